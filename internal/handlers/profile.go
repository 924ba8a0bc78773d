package handlers

import (
	"errors"
	"net/http"

	"boarddash/internal/middleware"
	"boarddash/internal/services"
	"boarddash/internal/views"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	accounts *services.AccountService
}

func NewProfileHandler(accounts *services.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

func (h *ProfileHandler) Show(c *gin.Context) {
	u := middleware.CurrentUser(c)
	Render(c, http.StatusOK, views.Profile, gin.H{
		"Form": services.ProfileInput{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email},
	})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	in := services.ProfileInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
	}

	err := h.accounts.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), in)
	if errors.Is(err, services.ErrValidation) {
		Render(c, http.StatusBadRequest, views.Profile, gin.H{
			"Form":   in,
			"Errors": services.FieldErrors(err),
		})
		return
	}
	if err != nil {
		htmlError(c, err)
		return
	}

	addFlash(c, flashSuccess, "Profile updated.")
	redirect(c, "/dashboard/profile/")
}
