// Package store holds the gorm-backed repositories. Every entity is reached
// through an explicit repository so handlers and services never touch *gorm.DB.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("record not found")

// Store bundles the repositories over one connection.
type Store struct {
	Users      UserRepository
	Posts      PostRepository
	Categories CategoryRepository
	Comments   CommentRepository
	Reactions  ReactionRepository
}

// New wires every repository to conn.
func New(conn *gorm.DB) *Store {
	return &Store{
		Users:      NewUserRepository(conn),
		Posts:      NewPostRepository(conn),
		Categories: NewCategoryRepository(conn),
		Comments:   NewCommentRepository(conn),
		Reactions:  NewReactionRepository(conn),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsScope matches rows where any of cols contains term, ignoring case.
func containsScope(term string, cols ...string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(cols) == 0 {
			return tx
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

		conds := make([]string, len(cols))
		args := make([]interface{}, len(cols))
		for i, col := range cols {
			conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
			args[i] = pattern
		}
		return tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
