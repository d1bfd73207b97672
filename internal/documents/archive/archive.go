// Package archive keeps registered deed documents, addressed by their content hash,
// so admins can retrieve the exact bytes a record hash was built from.
package archive

import (
	"context"

	"deedgate/pkg/domain"
)

// Document is an archived deed.
type Document struct {
	ContentHash domain.ContentHash
	ContentType string
	Data        []byte
}

// Archive stores deeds by content hash. Put is idempotent for identical content.
// Get returns sentinel.ErrNotFound for unknown hashes; transport failures wrap
// sentinel.ErrUnavailable.
type Archive interface {
	Put(ctx context.Context, doc Document) error
	Get(ctx context.Context, hash domain.ContentHash) (*Document, error)
	Exists(ctx context.Context, hash domain.ContentHash) (bool, error)
}

// ObjectKey is the storage key of a deed.
func ObjectKey(hash domain.ContentHash) string {
	return "deeds/" + hash.String()
}
