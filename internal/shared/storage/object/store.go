package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStore saves and retrieves objects addressed by slash-separated keys.
type ObjectStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// Key joins sanitized segments into a storage key.
func Key(segments ...string) (string, error) {
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		s, err := sanitizeSegment(seg)
		if err != nil {
			return "", err
		}
		clean = append(clean, s)
	}
	return path.Join(clean...), nil
}

// ValidateKey rejects absolute keys and traversal.
func ValidateKey(storageKey string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(storageKey, "\\", "/"))
	if clean == "." || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

func sanitizeSegment(seg string) (string, error) {
	if strings.Contains(seg, "..") {
		return "", ErrInvalidKey
	}
	s := strings.TrimSpace(seg)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", ErrInvalidKey
	}
	return s, nil
}
