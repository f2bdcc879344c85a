package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"eventportal/internal/apperr"
	"eventportal/internal/auth"
	"eventportal/internal/portal"
)

var errLogout = apperr.New(apperr.KindInternal, "logout_failed", "Failed to logout")

// Signup creates an account. Signing up does not log the user in.
func (h *Handler) Signup(c *gin.Context) {
	var in portal.SignupInput
	if !h.bindJSON(c, &in) {
		return
	}
	u, err := h.svc.Signup(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusCreated, gin.H{"message": "Registration successful", "role": u.Role})
}

// Login verifies credentials, stores a new session and sets the cookie.
func (h *Handler) Login(c *gin.Context) {
	var in portal.LoginInput
	if !h.bindJSON(c, &in) {
		return
	}
	sess, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	tok, err := auth.Issue(h.opts.Issuer, h.opts.SigningKey, h.opts.SessionTTL)
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.ErrInternal, err))
		return
	}
	if err := h.sessions.Set(c.Request.Context(), tok.SessionID, sess, h.opts.SessionTTL); err != nil {
		h.fail(c, apperr.Wrap(apperr.ErrStorageUnavailable, err))
		return
	}
	// A previous session on this client is replaced, not reused.
	if old := auth.SessionID(c); old != "" {
		if err := h.sessions.Destroy(c.Request.Context(), old); err != nil {
			log.Warn().Err(err).Msg("failed to destroy replaced session")
		}
	}

	h.setCookie(c, tok.Value, int(h.opts.SessionTTL.Seconds()))
	succeed(c, http.StatusOK, gin.H{"message": "Login successful", "user": sess, "token": tok.Value})
}

// Logout destroys the current session, if any, and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if sid := auth.SessionID(c); sid != "" {
		if err := h.sessions.Destroy(c.Request.Context(), sid); err != nil {
			h.fail(c, apperr.Wrap(errLogout, err))
			return
		}
	}
	h.setCookie(c, "", -1)
	succeed(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Session reports the current session snapshot.
func (h *Handler) Session(c *gin.Context) {
	s := auth.SessionFrom(c)
	if s == nil {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedIn": true, "user": s})
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, value, maxAge, "/", "", h.opts.SecureCookie, true)
}
