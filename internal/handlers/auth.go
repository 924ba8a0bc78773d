package handlers

import (
	"errors"
	"net/http"

	"boarddash/internal/middleware"
	"boarddash/internal/services"
	"boarddash/internal/views"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultLanding = "/dashboard/board/"
	noAccessNotice = "Your account doesn't have access to this page. To proceed, please log in with an account that has access."
)

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	rawNext := c.Query("next")
	next := safeNext(rawNext, defaultLanding)
	if middleware.CurrentUser(c) != nil {
		if rawNext == "" {
			c.Redirect(http.StatusFound, next)
			return
		}
		// 已登录但无权访问 next：停在登录页，不再跳回
		Render(c, http.StatusOK, views.Login, gin.H{"Next": next, "Notice": noAccessNotice})
		return
	}
	Render(c, http.StatusOK, views.Login, gin.H{"Next": next})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := safeNext(c.PostForm("next"), defaultLanding)

	user, err := h.accounts.Authenticate(c.Request.Context(), username, password)
	if errors.Is(err, services.ErrBadCredentials) {
		Render(c, http.StatusUnauthorized, views.Login, gin.H{
			"Error":    "Please enter a correct username and password.",
			"Username": username,
			"Next":     next,
		})
		return
	}
	if err != nil {
		htmlError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserID, user.ID)
	if err := session.Save(); err != nil {
		htmlError(c, err)
		return
	}
	middleware.Logger(c).Info("User logged in", zap.Uint("user_id", user.ID))

	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, middleware.LoginPath)
}
