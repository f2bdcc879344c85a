package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedRouter(store SessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoadSession(store, "key", "event-portal"))
	r.GET("/faculty", Require(RequireRole(RoleFaculty)), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": SessionFrom(c).Email, "sid": SessionID(c)})
	})
	return r
}

func loginAs(t *testing.T, store SessionStore, s Session) SessionToken {
	t.Helper()
	tok, err := Issue("event-portal", "key", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), tok.SessionID, s, time.Hour))
	return tok
}

func TestRequireWithCookie(t *testing.T) {
	store := NewMemorySessions()
	r := newGuardedRouter(store)
	tok := loginAs(t, store, Session{UserID: 2, Email: "prof@svkm.ac.in", Role: RoleFaculty})

	req := httptest.NewRequest(http.MethodGet, "/faculty", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok.Value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prof@svkm.ac.in")
	assert.Contains(t, w.Body.String(), tok.SessionID)
}

func TestRequireWithBearer(t *testing.T) {
	store := NewMemorySessions()
	r := newGuardedRouter(store)
	tok := loginAs(t, store, Session{UserID: 2, Email: "prof@svkm.ac.in", Role: RoleFaculty})

	req := httptest.NewRequest(http.MethodGet, "/faculty", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireDenies(t *testing.T) {
	store := NewMemorySessions()
	r := newGuardedRouter(store)
	student := loginAs(t, store, Session{UserID: 1, Role: RoleStudent})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/faculty", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/faculty", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: student.Value})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Faculty only")

	req = httptest.NewRequest(http.MethodGet, "/faculty", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoadSessionDestroyedSession(t *testing.T) {
	store := NewMemorySessions()
	r := newGuardedRouter(store)
	tok := loginAs(t, store, Session{UserID: 2, Role: RoleFaculty})
	require.NoError(t, store.Destroy(context.Background(), tok.SessionID))

	req := httptest.NewRequest(http.MethodGet, "/faculty", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok.Value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type unreachableSessions struct{ SessionStore }

func (unreachableSessions) Get(context.Context, string) (*Session, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestRequireWhenSessionStoreDown(t *testing.T) {
	mem := NewMemorySessions()
	tok := loginAs(t, mem, Session{UserID: 1, Email: "a@svkm.ac.in", Role: RoleFaculty})
	r := newGuardedRouter(unreachableSessions{mem})

	req := httptest.NewRequest(http.MethodGet, "/faculty", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok.Value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	// No token at all is still a plain 401.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/faculty", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
