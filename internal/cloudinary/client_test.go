package cloudinary

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	c := New("demo", "key", "secret", "")
	got := c.sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "proofs",
		"api_key":   "key",
	})
	want := fmt.Sprintf("%x", sha1.Sum([]byte("folder=proofs&timestamp=1700000000secret")))
	assert.Equal(t, want, got)
}

func TestUpload(t *testing.T) {
	var gotFields map[string]string
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		f, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		gotFile, _ = io.ReadAll(f)
		_, _ = w.Write([]byte(`{"public_id":"proofs/abc","secure_url":"https://cdn/proofs/abc.png","bytes":4}`))
	}))
	defer srv.Close()

	c := New("demo", "key", "secret", "proofs")
	c.BaseURL = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := c.Upload(context.Background(), []byte("data"), "abc.png", "abc")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/proofs/abc.png", res.SecureURL)
	assert.Equal(t, []byte("data"), gotFile)
	assert.Equal(t, "proofs", gotFields["folder"])
	assert.Equal(t, "abc", gotFields["public_id"])
	assert.Equal(t, "1700000000", gotFields["timestamp"])
	assert.Equal(t, c.sign(map[string]string{"timestamp": "1700000000", "folder": "proofs", "public_id": "abc"}), gotFields["signature"])
}

func TestUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad signature", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("demo", "key", "secret", "")
	c.BaseURL = srv.URL
	_, err := c.Upload(context.Background(), []byte("data"), "abc.png", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
