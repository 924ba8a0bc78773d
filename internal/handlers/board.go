package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"boarddash/internal/middleware"
	"boarddash/internal/models"
	"boarddash/internal/services"
	"boarddash/internal/store"
	"boarddash/internal/utils"
	"boarddash/internal/views"

	"github.com/gin-gonic/gin"
)

const (
	boardPath          = "/dashboard/board/"
	noCategoriesNotice = "No categories exist yet. A staff member needs to create one before posts can be written."
)

// CommentView pairs a comment with its rendered body.
type CommentView struct {
	models.Comment
	Body template.HTML
}

// BoardHandler serves the member board.
type BoardHandler struct {
	board    *services.BoardService
	renderer *utils.ContentRenderer
}

func NewBoardHandler(board *services.BoardService, renderer *utils.ContentRenderer) *BoardHandler {
	return &BoardHandler{board: board, renderer: renderer}
}

func postPath(id uint) string {
	return fmt.Sprintf("/dashboard/board/post/%d/", id)
}

// List shows posts newest first; htmx requests get only the rows.
func (h *BoardHandler) List(c *gin.Context) {
	posts, err := h.board.ListPosts(c.Request.Context(), store.ParsePage(c.Query("page")))
	if err != nil {
		htmlError(c, err)
		return
	}

	name := views.BoardList
	if IsHtmx(c) {
		name = views.PostRows
	}
	Render(c, http.StatusOK, name, gin.H{"Posts": posts})
}

func (h *BoardHandler) Detail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found.")
		return
	}
	h.renderDetail(c, http.StatusOK, id, gin.H{})
}

func (h *BoardHandler) renderDetail(c *gin.Context, code int, postID uint, obj gin.H) {
	user := middleware.CurrentUser(c)
	detail, err := h.board.PostDetail(c.Request.Context(), user, postID)
	if err != nil {
		htmlError(c, err)
		return
	}

	comments := make([]CommentView, len(detail.Comments))
	for i := range detail.Comments {
		comments[i] = CommentView{Comment: detail.Comments[i], Body: h.renderer.Comment(&detail.Comments[i])}
	}

	obj["Post"] = detail.Post
	obj["Body"] = h.renderer.Post(detail.Post)
	obj["Comments"] = comments
	obj["Like"] = detail.Like
	obj["Bookmark"] = detail.Bookmark
	obj["CanEdit"] = detail.Post.AuthorID == user.ID
	Render(c, code, views.PostDetail, obj)
}

// CreateComment handles the comment form posted to the detail page.
func (h *BoardHandler) CreateComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found.")
		return
	}

	in := services.CommentInput{Content: c.PostForm("content")}
	_, err := h.board.AddComment(c.Request.Context(), middleware.CurrentUser(c), id, in)
	if errors.Is(err, services.ErrValidation) {
		h.renderDetail(c, http.StatusBadRequest, id, gin.H{
			"Errors":         services.FieldErrors(err),
			"CommentContent": in.Content,
		})
		return
	}
	if err != nil {
		htmlError(c, err)
		return
	}

	addFlash(c, flashSuccess, "Comment added.")
	redirect(c, postPath(id))
}

func (h *BoardHandler) ShowCreate(c *gin.Context) {
	cats, err := h.board.PostFormCategories(c.Request.Context())
	if errors.Is(err, services.ErrPreconditionUnmet) {
		addFlash(c, flashError, noCategoriesNotice)
		redirect(c, boardPath)
		return
	}
	if err != nil {
		htmlError(c, err)
		return
	}
	Render(c, http.StatusOK, views.PostForm, gin.H{
		"Categories": cats,
		"Form":       services.PostInput{},
		"Action":     "/dashboard/board/post/new/",
	})
}

func (h *BoardHandler) Create(c *gin.Context) {
	in := postInput(c)
	post, err := h.board.CreatePost(c.Request.Context(), middleware.CurrentUser(c), in)
	switch {
	case err == nil:
		addFlash(c, flashSuccess, "Post published.")
		redirect(c, postPath(post.ID))
	case errors.Is(err, services.ErrPreconditionUnmet):
		addFlash(c, flashError, noCategoriesNotice)
		redirect(c, boardPath)
	case errors.Is(err, services.ErrValidation):
		h.renderForm(c, nil, in, services.FieldErrors(err), "/dashboard/board/post/new/")
	default:
		htmlError(c, err)
	}
}

func (h *BoardHandler) ShowEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found.")
		return
	}

	post, err := h.board.EditablePost(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		htmlError(c, err)
		return
	}
	cats, err := h.board.Categories(c.Request.Context())
	if err != nil {
		htmlError(c, err)
		return
	}

	form := services.PostInput{Title: post.Title, Content: post.Content}
	if post.CategoryID != nil {
		form.CategoryID = *post.CategoryID
	}
	Render(c, http.StatusOK, views.PostForm, gin.H{
		"Post":       post,
		"Categories": cats,
		"Form":       form,
		"Action":     postPath(post.ID) + "edit/",
	})
}

func (h *BoardHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found.")
		return
	}

	in := postInput(c)
	post, err := h.board.UpdatePost(c.Request.Context(), middleware.CurrentUser(c), id, in)
	switch {
	case err == nil:
		addFlash(c, flashSuccess, "Post updated.")
		redirect(c, postPath(post.ID))
	case errors.Is(err, services.ErrValidation):
		h.renderForm(c, post, in, services.FieldErrors(err), postPath(id)+"edit/")
	default:
		htmlError(c, err)
	}
}

func (h *BoardHandler) renderForm(c *gin.Context, post *models.Post, in services.PostInput, fieldErrs map[string]string, action string) {
	cats, err := h.board.Categories(c.Request.Context())
	if err != nil {
		htmlError(c, err)
		return
	}
	Render(c, http.StatusBadRequest, views.PostForm, gin.H{
		"Post":       post,
		"Categories": cats,
		"Form":       in,
		"Errors":     fieldErrs,
		"Action":     action,
	})
}

func postInput(c *gin.Context) services.PostInput {
	// 非法分类 id 按 0 处理，由校验返回字段错误
	categoryID, _ := utils.ParseID(c.PostForm("category"))
	return services.PostInput{
		Title:      c.PostForm("title"),
		Content:    c.PostForm("content"),
		CategoryID: categoryID,
	}
}
