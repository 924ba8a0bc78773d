package handlers

import (
	"errors"
	"net/http"
	"strings"

	"boarddash/internal/middleware"
	"boarddash/internal/services"
	"boarddash/internal/utils"
	"boarddash/internal/views"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	flashError   = "flash_error"
	flashSuccess = "flash_success"
)

// Render injects the current user, path and pending flash messages.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	obj["FlashErrors"], obj["FlashSuccess"] = takeFlashes(c)

	c.HTML(code, name, obj)
}

// RenderError renders the error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, views.Error, gin.H{"Error": message, "Code": code})
}

// HtmxRedirect tells htmx to navigate client side.
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

// IsHtmx reports whether the request came from htmx.
func IsHtmx(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// redirect sends the client to path, via HX-Redirect for htmx requests.
func redirect(c *gin.Context, path string) {
	if IsHtmx(c) {
		HtmxRedirect(c, path)
		return
	}
	c.Redirect(http.StatusFound, path)
}

func addFlash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	if err := session.Save(); err != nil {
		middleware.Logger(c).Warn("Failed to save flash", zap.Error(err))
	}
}

func takeFlashes(c *gin.Context) (errs, success []string) {
	session := sessions.Default(c)
	for _, f := range session.Flashes(flashError) {
		if s, ok := f.(string); ok {
			errs = append(errs, s)
		}
	}
	for _, f := range session.Flashes(flashSuccess) {
		if s, ok := f.(string); ok {
			success = append(success, s)
		}
	}
	// Flashes 读取后即清除，需要保存 session
	if len(errs)+len(success) > 0 {
		_ = session.Save()
	}
	return errs, success
}

// pathID parses the :id route param.
func pathID(c *gin.Context) (uint, bool) {
	return utils.ParseID(c.Param("id"))
}

// jsonError maps service errors to a JSON body. Internal errors are logged
// and never echoed to the client.
func jsonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "fields": services.FieldErrors(err)})
	default:
		middleware.Logger(c).Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// htmlError is jsonError for page requests.
func htmlError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "Page not found.")
	case errors.Is(err, services.ErrForbidden):
		RenderError(c, http.StatusForbidden, "You do not have permission to do that.")
	default:
		middleware.Logger(c).Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// safeNext only allows local redirect targets.
func safeNext(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return fallback
}
