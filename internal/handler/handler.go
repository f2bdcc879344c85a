package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"eventportal/internal/apperr"
	"eventportal/internal/auth"
	"eventportal/internal/portal"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Healthy(ctx context.Context) bool
}

// Options configures session cookies and error rendering.
type Options struct {
	SigningKey   string
	Issuer       string
	SessionTTL   time.Duration
	SecureCookie bool
	// Development adds internal error details to failure responses.
	Development bool
	// Checks are probed by the health endpoint, keyed by name.
	Checks map[string]Checker
}

// Handler serves the portal API.
type Handler struct {
	svc      *portal.Service
	sessions auth.SessionStore
	opts     Options
}

func New(svc *portal.Service, sessions auth.SessionStore, opts Options) *Handler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &Handler{svc: svc, sessions: sessions, opts: opts}
}

// ---------- Health ----------

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, chk := range h.opts.Checks {
		ok := chk.Healthy(ctx)
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ---------- Responses ----------

func (h *Handler) fail(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Wrap(apperr.ErrInternal, err)
	}
	status := e.Kind.Status()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	body := gin.H{"success": false, "error": e.Message}
	if h.opts.Development && e.Err != nil {
		body["details"] = e.Err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

func succeed(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

var errBadBody = apperr.Validation("Invalid request body")

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.Wrap(errBadBody, err))
		return false
	}
	return true
}

func (h *Handler) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.fail(c, apperr.ErrEventNotFound)
		return 0, false
	}
	return id, true
}

func isMaxBytes(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
