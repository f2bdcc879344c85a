package proof

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventportal/internal/cloudinary"
)

func TestNewNameUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n := NewName("Screenshot.PNG")
		assert.True(t, strings.HasSuffix(n, ".png"))
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestDiskStorePut(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(filepath.Join(dir, "uploads"), "/uploads/")
	require.NoError(t, err)

	ref1, err := s.Put(context.Background(), pngBytes, "proof.png")
	require.NoError(t, err)
	ref2, err := s.Put(context.Background(), pngBytes, "proof.png")
	require.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
	assert.True(t, strings.HasPrefix(ref1, "uploads/"))

	got, err := os.ReadFile(filepath.Join(dir, ref1))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)
}

func TestDiskStoreCanceled(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "uploads")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, pngBytes, "a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloudinaryStorePut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		id := r.FormValue("public_id")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"public_id":  id,
			"secure_url": "https://cdn.example/" + id + ".png",
		})
	}))
	defer srv.Close()

	client := cloudinary.New("demo", "key", "secret", "proofs")
	client.BaseURL = srv.URL
	ref, err := NewCloudinaryStore(client).Put(context.Background(), pngBytes, "proof.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "https://cdn.example/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
}
