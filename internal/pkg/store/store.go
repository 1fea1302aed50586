// Package store fetches and decodes catalog, collection and item documents.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/spf13/afero"
)

// Common errors.
var (
	ErrNotFound     = errors.New("store: document not found")
	ErrForbidden    = errors.New("store: access forbidden")
	ErrServerError  = errors.New("store: server error")
	ErrSignedAccess = errors.New("store: signed requests are not supported, enable skip-signature")
)

// AccessOptions conveys how the backing object store may be accessed.
type AccessOptions struct {
	// SkipSignature allows anonymous, unsigned access.
	SkipSignature bool
	// Region is the object store region, used to expand s3:// locations.
	Region string
}

// CatalogStore fetches the document at href and decodes it into dst.
type CatalogStore interface {
	Get(ctx context.Context, href string, opts AccessOptions, dst any) error
}

// New returns the store able to read locator: an HTTP store for remote
// locations, a file store on the OS file system otherwise.
func New(locator string, opts HTTPOptions) CatalogStore {
	if IsRemoteLocator(locator) {
		return NewHTTPStore(opts)
	}
	return NewFileStore(afero.NewOsFs())
}

// IsRemoteLocator reports whether locator is an http(s) or s3 URL.
func IsRemoteLocator(locator string) bool {
	if !govalidator.IsRequestURL(locator) {
		return false
	}
	lower := strings.ToLower(locator)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "s3://")
}
