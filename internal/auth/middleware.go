package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"eventportal/internal/apperr"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "portal_session"

const (
	ctxSession    = "session"
	ctxSessionID  = "session_id"
	ctxSessionErr = "session_error"
)

// LoadSession resolves the session token from the cookie or a bearer header
// and attaches the stored session to the gin context. Missing, invalid or
// expired tokens leave the request anonymous. A failed store lookup also
// leaves it anonymous, but Require then answers 503 instead of 401.
func LoadSession(store SessionStore, signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.Next()
			return
		}
		sid, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.Next()
			return
		}
		s, err := store.Get(c.Request.Context(), sid)
		if err != nil {
			log.Warn().Err(err).Msg("session lookup failed")
			c.Set(ctxSessionErr, err)
			c.Next()
			return
		}
		if s != nil {
			c.Set(ctxSession, s)
			c.Set(ctxSessionID, sid)
		}
		c.Next()
	}
}

// Require aborts the request unless the session satisfies req.
func Require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Authorize(SessionFrom(c), req); err != nil {
			if _, failed := c.Get(ctxSessionErr); failed && errors.Is(err, apperr.ErrUnauthorized) {
				err = apperr.ErrStorageUnavailable
			}
			status, msg := apperr.KindForbidden.Status(), apperr.ErrForbidden.Message
			if e, ok := apperr.As(err); ok {
				status, msg = e.Kind.Status(), e.Message
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session attached by LoadSession, or nil.
func SessionFrom(c *gin.Context) *Session {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// SessionID returns the id of the attached session, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	authz := c.GetHeader("Authorization")
	if len(authz) > len("bearer ") && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
