package handlers

import (
	"errors"
	"net/http"

	"boarddash/internal/middleware"
	"boarddash/internal/services"
	"boarddash/internal/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const categoriesPath = "/dashboard/categories/"

// CategoryHandler lets staff manage board categories.
type CategoryHandler struct {
	board *services.BoardService
}

func NewCategoryHandler(board *services.BoardService) *CategoryHandler {
	return &CategoryHandler{board: board}
}

func (h *CategoryHandler) List(c *gin.Context) {
	h.render(c, http.StatusOK, gin.H{})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	in := services.CategoryInput{Name: c.PostForm("name")}
	cat, err := h.board.CreateCategory(c.Request.Context(), in)
	if errors.Is(err, services.ErrValidation) {
		h.render(c, http.StatusBadRequest, gin.H{"Errors": services.FieldErrors(err), "Name": in.Name})
		return
	}
	if err != nil {
		htmlError(c, err)
		return
	}

	middleware.Logger(c).Info("Category created", zap.Uint("category_id", cat.ID), zap.String("name", cat.Name))
	addFlash(c, flashSuccess, "Category \""+cat.Name+"\" created.")
	redirect(c, categoriesPath)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found.")
		return
	}
	if err := h.board.DeleteCategory(c.Request.Context(), id); err != nil {
		htmlError(c, err)
		return
	}

	middleware.Logger(c).Info("Category deleted", zap.Uint("category_id", id))
	addFlash(c, flashSuccess, "Category deleted.")
	redirect(c, categoriesPath)
}

func (h *CategoryHandler) render(c *gin.Context, code int, obj gin.H) {
	cats, err := h.board.Categories(c.Request.Context())
	if err != nil {
		htmlError(c, err)
		return
	}
	obj["Categories"] = cats
	Render(c, code, views.Categories, obj)
}
