// Package policy holds the access rules as pure functions over the acting
// user and the target. Nothing here touches the request or the database.
package policy

import "boarddash/internal/models"

// Reason explains a denial.
type Reason string

const (
	ReasonAnonymous       Reason = "login required"
	ReasonInactive        Reason = "account disabled"
	ReasonNotStaff        Reason = "staff only"
	ReasonNotAuthor       Reason = "only the author may edit this post"
	ReasonSelfTarget      Reason = "cannot change your own status"
	ReasonMissingResource Reason = "resource not found"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r Reason) Decision { return Decision{Reason: r} }

// Authenticated allows any active, logged-in user.
func Authenticated(u *models.User) Decision {
	if u == nil || u.ID == 0 {
		return deny(ReasonAnonymous)
	}
	if !u.IsActive {
		return deny(ReasonInactive)
	}
	return allow()
}

// ActiveStaff allows authenticated staff users only.
func ActiveStaff(u *models.User) Decision {
	if d := Authenticated(u); !d.Allowed {
		return d
	}
	if !u.IsStaff {
		return deny(ReasonNotStaff)
	}
	return allow()
}

// CanEditPost allows only the post's author, staff included.
func CanEditPost(u *models.User, p *models.Post) Decision {
	if d := Authenticated(u); !d.Allowed {
		return d
	}
	if p == nil {
		return deny(ReasonMissingResource)
	}
	if p.AuthorID != u.ID {
		return deny(ReasonNotAuthor)
	}
	return allow()
}

// CanToggleStatus allows staff to flip any other user's active flag.
func CanToggleStatus(actor, target *models.User) Decision {
	if d := ActiveStaff(actor); !d.Allowed {
		return d
	}
	if target == nil {
		return deny(ReasonMissingResource)
	}
	if actor.ID == target.ID {
		return deny(ReasonSelfTarget)
	}
	return allow()
}
