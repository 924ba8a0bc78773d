package services

import (
	"context"
	"fmt"

	"boarddash/internal/metrics"
	"boarddash/internal/store"
)

// LikeResult is the JSON body of a like toggle.
type LikeResult struct {
	IsLiked   bool  `json:"is_liked"`
	LikeCount int64 `json:"like_count"`
}

// BookmarkResult is the JSON body of a bookmark toggle.
type BookmarkResult struct {
	IsBookmarked  bool  `json:"is_bookmarked"`
	BookmarkCount int64 `json:"bookmark_count"`
}

// ReactionService flips likes and bookmarks. Each toggle is a single
// storage-level delete-else-insert, so concurrent toggles never leave more
// than one row per (user, post).
type ReactionService struct {
	posts     store.PostRepository
	reactions store.ReactionRepository
}

func NewReactionService(s *store.Store) *ReactionService {
	return &ReactionService{posts: s.Posts, reactions: s.Reactions}
}

func (s *ReactionService) ToggleLike(ctx context.Context, userID, postID uint) (LikeResult, error) {
	active, count, err := s.toggle(ctx, store.KindLike, userID, postID)
	return LikeResult{IsLiked: active, LikeCount: count}, err
}

func (s *ReactionService) ToggleBookmark(ctx context.Context, userID, postID uint) (BookmarkResult, error) {
	active, count, err := s.toggle(ctx, store.KindBookmark, userID, postID)
	return BookmarkResult{IsBookmarked: active, BookmarkCount: count}, err
}

func (s *ReactionService) toggle(ctx context.Context, kind store.ReactionKind, userID, postID uint) (bool, int64, error) {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		metrics.ReactionToggles.WithLabelValues(string(kind), "error").Inc()
		return false, 0, fmt.Errorf("check post %d: %w", postID, err)
	}
	if !exists {
		return false, 0, ErrNotFound
	}

	active, err := s.reactions.Toggle(ctx, kind, userID, postID)
	if err != nil {
		metrics.ReactionToggles.WithLabelValues(string(kind), "error").Inc()
		return false, 0, fmt.Errorf("toggle %s on post %d: %w", kind, postID, err)
	}

	count, err := s.reactions.CountForPost(ctx, kind, postID)
	if err != nil {
		metrics.ReactionToggles.WithLabelValues(string(kind), "error").Inc()
		return false, 0, fmt.Errorf("count %s on post %d: %w", kind, postID, err)
	}

	result := "off"
	if active {
		result = "on"
	}
	metrics.ReactionToggles.WithLabelValues(string(kind), result).Inc()
	return active, count, nil
}

// State reports whether userID has liked and bookmarked postID, with totals.
func (s *ReactionService) State(ctx context.Context, userID, postID uint) (LikeResult, BookmarkResult, error) {
	var (
		like LikeResult
		mark BookmarkResult
		err  error
	)
	if like.IsLiked, err = s.reactions.Exists(ctx, store.KindLike, userID, postID); err != nil {
		return like, mark, err
	}
	if like.LikeCount, err = s.reactions.CountForPost(ctx, store.KindLike, postID); err != nil {
		return like, mark, err
	}
	if mark.IsBookmarked, err = s.reactions.Exists(ctx, store.KindBookmark, userID, postID); err != nil {
		return like, mark, err
	}
	if mark.BookmarkCount, err = s.reactions.CountForPost(ctx, store.KindBookmark, postID); err != nil {
		return like, mark, err
	}
	return like, mark, nil
}
