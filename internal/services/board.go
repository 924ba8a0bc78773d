package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boarddash/internal/models"
	"boarddash/internal/policy"
	"boarddash/internal/store"
)

// PostInput is the create/edit post form.
type PostInput struct {
	Title      string `form:"title" validate:"required,max=200"`
	Content    string `form:"content" validate:"required"`
	CategoryID uint   `form:"category" validate:"required"`
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
}

// CommentInput is the comment form on the post detail page.
type CommentInput struct {
	Content string `form:"content" validate:"required,max=5000"`
}

// CategoryInput is the staff category form.
type CategoryInput struct {
	Name string `form:"name" validate:"required,max=100"`
}

// PostDetail is a post with its comments and the viewer's reaction state.
type PostDetail struct {
	Post     *models.Post
	Comments []models.Comment
	Like     LikeResult
	Bookmark BookmarkResult
}

// BoardService implements the member board: posts, comments, categories.
type BoardService struct {
	posts      store.PostRepository
	comments   store.CommentRepository
	categories store.CategoryRepository
	reactions  *ReactionService
}

func NewBoardService(s *store.Store, reactions *ReactionService) *BoardService {
	return &BoardService{
		posts:      s.Posts,
		comments:   s.Comments,
		categories: s.Categories,
		reactions:  reactions,
	}
}

func (s *BoardService) ListPosts(ctx context.Context, page int) (store.Page[models.Post], error) {
	return s.posts.List(ctx, page, store.DefaultPageSize)
}

func (s *BoardService) PostDetail(ctx context.Context, viewer *models.User, postID uint) (*PostDetail, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	like, mark, err := s.reactions.State(ctx, viewer.ID, postID)
	if err != nil {
		return nil, fmt.Errorf("reaction state: %w", err)
	}
	return &PostDetail{Post: post, Comments: comments, Like: like, Bookmark: mark}, nil
}

// PostFormCategories returns the choices for the post form. A post cannot
// exist without a category, so an empty list is ErrPreconditionUnmet.
func (s *BoardService) PostFormCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.categories.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		return nil, ErrPreconditionUnmet
	}
	return cats, nil
}

func (s *BoardService) CreatePost(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	if _, err := s.PostFormCategories(ctx); err != nil {
		return nil, err
	}
	if err := s.checkPostInput(ctx, &in); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:   author.ID,
		CategoryID: &in.CategoryID,
		Title:      in.Title,
		Content:    in.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// EditablePost loads a post for editing by u.
func (s *BoardService) EditablePost(ctx context.Context, u *models.User, postID uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanEditPost(u, post); !d.Allowed {
		return post, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	return post, nil
}

func (s *BoardService) UpdatePost(ctx context.Context, u *models.User, postID uint, in PostInput) (*models.Post, error) {
	post, err := s.EditablePost(ctx, u, postID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPostInput(ctx, &in); err != nil {
		return post, err
	}

	post.Title = in.Title
	post.Content = in.Content
	post.CategoryID = &in.CategoryID
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post %d: %w", postID, err)
	}
	return post, nil
}

func (s *BoardService) checkPostInput(ctx context.Context, in *PostInput) error {
	in.normalize()
	if err := validateInput(in); err != nil {
		return err
	}
	if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ValidationError{Fields: map[string]string{"category": "Select a valid choice."}}
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func (s *BoardService) AddComment(ctx context.Context, author *models.User, postID uint, in CommentInput) (*models.Comment, error) {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post %d: %w", postID, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, AuthorID: author.ID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *BoardService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.All(ctx)
}

func (s *BoardService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	cats, err := s.categories.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, in.Name) {
			return nil, &ValidationError{Fields: map[string]string{"name": "Category with this name already exists."}}
		}
	}

	cat := &models.Category{Name: in.Name}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// DeleteCategory removes a category; its posts stay with no category.
func (s *BoardService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categories.Delete(ctx, id)
}
