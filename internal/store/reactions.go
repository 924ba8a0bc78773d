package store

import (
	"context"
	"fmt"

	"boarddash/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionKind selects the likes or bookmarks table.
type ReactionKind string

const (
	KindLike     ReactionKind = "like"
	KindBookmark ReactionKind = "bookmark"
)

func (k ReactionKind) model() (interface{}, error) {
	switch k {
	case KindLike:
		return &models.Like{}, nil
	case KindBookmark:
		return &models.Bookmark{}, nil
	}
	return nil, fmt.Errorf("unknown reaction kind %q", k)
}

func (k ReactionKind) row(userID, postID uint) interface{} {
	if k == KindBookmark {
		return &models.Bookmark{UserID: userID, PostID: postID}
	}
	return &models.Like{UserID: userID, PostID: postID}
}

type ReactionRepository interface {
	// Toggle removes the (user, post) row if present, else inserts it, and
	// reports whether the row exists afterwards.
	Toggle(ctx context.Context, kind ReactionKind, userID, postID uint) (bool, error)
	Exists(ctx context.Context, kind ReactionKind, userID, postID uint) (bool, error)
	CountForPost(ctx context.Context, kind ReactionKind, postID uint) (int64, error)
	Count(ctx context.Context, kind ReactionKind) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(conn *gorm.DB) ReactionRepository {
	return &reactionRepository{db: conn}
}

// Toggle runs delete-else-insert in one transaction. The insert uses
// ON CONFLICT DO NOTHING against the (post_id, user_id) unique index, so a
// concurrent toggle that inserted first leaves exactly one row and this call
// still reports the reaction as present.
func (r *reactionRepository) Toggle(ctx context.Context, kind ReactionKind, userID, postID uint) (bool, error) {
	model, err := kind.model()
	if err != nil {
		return false, err
	}

	active := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		// 已存在则取消
		if res.RowsAffected > 0 {
			return nil
		}

		res = tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(kind.row(userID, postID))
		if res.Error != nil {
			return res.Error
		}
		active = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

func (r *reactionRepository) Exists(ctx context.Context, kind ReactionKind, userID, postID uint) (bool, error) {
	model, err := kind.model()
	if err != nil {
		return false, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(model).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *reactionRepository) CountForPost(ctx context.Context, kind ReactionKind, postID uint) (int64, error) {
	model, err := kind.model()
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(model).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

func (r *reactionRepository) Count(ctx context.Context, kind ReactionKind) (int64, error) {
	model, err := kind.model()
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(model).Count(&n).Error
	return n, err
}
