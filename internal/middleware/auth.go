package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"boarddash/internal/logging"
	"boarddash/internal/models"
	"boarddash/internal/policy"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CheckUserKey  = "user"
	SessionUserID = "user_id"
	LoginPath     = "/dashboard/login/"
)

// UserLoader resolves the session's user id.
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser retrieves the session user and stores it on the context. Missing
// or deactivated accounts are treated as anonymous.
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := sessionUserID(session.Get(SessionUserID))
		if !ok {
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), id)
		if err != nil || !user.IsActive {
			if err != nil {
				logging.L().Debug("Session user not loaded", zap.Uint("user_id", id), zap.Error(err))
			}
			session.Delete(SessionUserID)
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(CheckUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// AuthRequired ensures an active user is logged in.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := policy.Authenticated(CurrentUser(c)); !d.Allowed {
			deny(c, d)
			return
		}
		c.Next()
	}
}

// StaffRequired ensures the user is active staff.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := policy.ActiveStaff(CurrentUser(c)); !d.Allowed {
			deny(c, d)
			return
		}
		c.Next()
	}
}

// deny sends browsers to the login page and JSON clients a 401.
func deny(c *gin.Context, d policy.Decision) {
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": string(d.Reason)})
		return
	}
	c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
	c.Abort()
}

// LoginURL builds the login redirect carrying next.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// WantsJSON reports whether the client asked for JSON.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func sessionUserID(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case uint:
		return id, id > 0
	case int:
		return uint(id), id > 0
	case int64:
		return uint(id), id > 0
	case float64:
		return uint(id), id > 0
	}
	return 0, false
}
