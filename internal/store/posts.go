package store

import (
	"context"

	"boarddash/internal/models"

	"gorm.io/gorm"
)

type PostRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, p *models.Post) error
	List(ctx context.Context, page, size int) (Page[models.Post], error)
	Recent(ctx context.Context, n int) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(conn *gorm.DB) PostRepository {
	return &postRepository{db: conn}
}

func withAuthorAndCategory(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").Preload("Category")
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var p models.Post
	if err := r.db.WithContext(ctx).Scopes(withAuthorAndCategory).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *postRepository) Create(ctx context.Context, p *models.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Category").Create(p).Error
}

// Update writes title, content and category; author and created_at never change.
func (r *postRepository) Update(ctx context.Context, p *models.Post) error {
	return r.db.WithContext(ctx).Model(&models.Post{ID: p.ID}).
		Updates(map[string]interface{}{
			"title":       p.Title,
			"content":     p.Content,
			"category_id": p.CategoryID,
		}).Error
}

// List returns posts newest first with like and comment counts filled in.
func (r *postRepository) List(ctx context.Context, page, size int) (Page[models.Post], error) {
	base := r.db.WithContext(ctx).Model(&models.Post{})
	result, err := Paginate[models.Post](base, page, size, "created_at DESC, id DESC", withAuthorAndCategory)
	if err != nil {
		return result, err
	}
	if err := r.fillCounts(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

func (r *postRepository) Recent(ctx context.Context, n int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Scopes(withAuthorAndCategory).
		Order("created_at DESC, id DESC").Limit(n).Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}

// fillCounts 批量填充点赞数和评论数
func (r *postRepository) fillCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	likes, err := countByPost(ctx, r.db, &models.Like{}, postIDs)
	if err != nil {
		return err
	}
	comments, err := countByPost(ctx, r.db, &models.Comment{}, postIDs)
	if err != nil {
		return err
	}

	for i := range posts {
		posts[i].LikeCount = likes[posts[i].ID]
		posts[i].CommentCount = comments[posts[i].ID]
	}
	return nil
}

func countByPost(ctx context.Context, conn *gorm.DB, model interface{}, postIDs []uint) (map[uint]int64, error) {
	type countResult struct {
		PostID uint
		Count  int64
	}
	var results []countResult
	err := conn.WithContext(ctx).Model(model).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(results))
	for _, res := range results {
		counts[res.PostID] = res.Count
	}
	return counts, nil
}
