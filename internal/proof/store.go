package proof

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"eventportal/internal/cloudinary"
)

// Store persists proof artifacts and returns a reference that can later be
// resolved for read access.
type Store interface {
	Put(ctx context.Context, data []byte, declaredName string) (string, error)
}

// NewName returns a random collision-resistant file name that keeps the
// declared extension.
func NewName(declaredName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(declaredName))
}

// DiskStore writes artifacts under a local directory that is served
// statically under the same prefix.
type DiskStore struct {
	dir    string
	prefix string
}

// NewDiskStore creates dir if needed. References are "<prefix>/<name>".
func NewDiskStore(dir, prefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, prefix: strings.Trim(prefix, "/")}, nil
}

// Put writes data to a new file. It never overwrites an existing artifact.
func (d *DiskStore) Put(ctx context.Context, data []byte, declaredName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := NewName(declaredName)
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	return path.Join(d.prefix, name), nil
}

// CloudinaryStore uploads artifacts to Cloudinary; references are secure URLs.
type CloudinaryStore struct {
	client *cloudinary.Client
}

// NewCloudinaryStore wraps a configured client.
func NewCloudinaryStore(client *cloudinary.Client) *CloudinaryStore {
	return &CloudinaryStore{client: client}
}

// Put uploads data under a random public id.
func (s *CloudinaryStore) Put(ctx context.Context, data []byte, declaredName string) (string, error) {
	name := NewName(declaredName)
	publicID := strings.TrimSuffix(name, filepath.Ext(name))
	res, err := s.client.Upload(ctx, data, name, publicID)
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}
