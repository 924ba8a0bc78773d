package handlers

import (
	"errors"
	"net/http"

	"boarddash/internal/middleware"
	"boarddash/internal/services"
	"boarddash/internal/store"
	"boarddash/internal/views"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the staff dashboard and user management.
type DashboardHandler struct {
	analytics *services.AnalyticsService
	accounts  *services.AccountService
}

func NewDashboardHandler(analytics *services.AnalyticsService, accounts *services.AccountService) *DashboardHandler {
	return &DashboardHandler{analytics: analytics, accounts: accounts}
}

func (h *DashboardHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	data, err := h.analytics.Dashboard(ctx)
	if err != nil {
		htmlError(c, err)
		return
	}

	search := c.Query("search")
	users, err := h.accounts.ListUsers(ctx, search, store.ParsePage(c.Query("page")))
	if err != nil {
		htmlError(c, err)
		return
	}

	Render(c, http.StatusOK, views.Dashboard, gin.H{
		"Data":   data,
		"Users":  users,
		"Search": search,
	})
}

// UserListPartial renders only the user table rows, for htmx search and paging.
func (h *DashboardHandler) UserListPartial(c *gin.Context) {
	search := c.Query("search")
	users, err := h.accounts.ListUsers(c.Request.Context(), search, store.ParsePage(c.Query("page")))
	if err != nil {
		htmlError(c, err)
		return
	}
	Render(c, http.StatusOK, views.UserRows, gin.H{
		"Users":  users,
		"Search": search,
	})
}

func (h *DashboardHandler) ToggleUserStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "User not found."})
		return
	}

	active, err := h.accounts.ToggleStatus(c.Request.Context(), middleware.CurrentUser(c), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "success", "is_active": active})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "You cannot change your own status."})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "User not found."})
	default:
		jsonError(c, err)
	}
}
