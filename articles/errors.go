package articles

import (
	"errors"
	"fmt"
)

var (
	ErrCollectionRequired    = errors.New("articles: collection does not exist")
	ErrCollectionCodeInvalid = errors.New("articles: collection code contains invalid characters")
	ErrSlugRequired          = errors.New("articles: slug is required")
	ErrSlugInvalid           = errors.New("articles: slug contains invalid characters")
	ErrSlugExists            = errors.New("articles: slug already exists")
	ErrTitleRequired         = errors.New("articles: title is required")
	ErrBodyRequired          = errors.New("articles: body is required")
	ErrStatusInvalid         = errors.New("articles: status is invalid")
	ErrArticleIDRequired     = errors.New("articles: article id required")
	ErrMetadataInvalid       = errors.New("articles: metadata invalid")
	ErrVersioningDisabled    = errors.New("articles: versioning feature disabled")
	ErrRevisionRequired      = errors.New("articles: revision identifier required")
	ErrRevisionConflict      = errors.New("articles: base revision mismatch")
	ErrAlreadyPublished      = errors.New("articles: article already published")
	ErrNotPublished          = errors.New("articles: article is not published")
	ErrSnapshotInvalid       = errors.New("articles: revision snapshot failed validation")
)

// NotFoundError reports a missing record together with the lookup key used.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "articles: not found"
	}
	return fmt.Sprintf("articles: %s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
