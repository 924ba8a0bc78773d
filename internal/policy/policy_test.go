package policy

import (
	"testing"

	"boarddash/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPolicies(t *testing.T) {
	staff := &models.User{ID: 1, IsActive: true, IsStaff: true}
	member := &models.User{ID: 2, IsActive: true}
	disabled := &models.User{ID: 3, IsActive: false, IsStaff: true}
	post := &models.Post{ID: 10, AuthorID: member.ID}

	tests := []struct {
		name string
		got  Decision
		want Decision
	}{
		{"anonymous", Authenticated(nil), Decision{Reason: ReasonAnonymous}},
		{"member authenticated", Authenticated(member), Decision{Allowed: true}},
		{"inactive", Authenticated(disabled), Decision{Reason: ReasonInactive}},
		{"staff", ActiveStaff(staff), Decision{Allowed: true}},
		{"member not staff", ActiveStaff(member), Decision{Reason: ReasonNotStaff}},
		{"inactive staff", ActiveStaff(disabled), Decision{Reason: ReasonInactive}},
		{"author edits", CanEditPost(member, post), Decision{Allowed: true}},
		{"staff is not author", CanEditPost(staff, post), Decision{Reason: ReasonNotAuthor}},
		{"missing post", CanEditPost(member, nil), Decision{Reason: ReasonMissingResource}},
		{"toggle other", CanToggleStatus(staff, member), Decision{Allowed: true}},
		{"toggle self", CanToggleStatus(staff, staff), Decision{Reason: ReasonSelfTarget}},
		{"member toggles", CanToggleStatus(member, staff), Decision{Reason: ReasonNotStaff}},
		{"toggle missing", CanToggleStatus(staff, nil), Decision{Reason: ReasonMissingResource}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
