package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Bucket is the name of a published LINZ dataset bucket.
type Bucket string

const (
	Elevation Bucket = "elevation"
	Imagery   Bucket = "imagery"

	// DefaultRegion is the AWS region both buckets are hosted in.
	DefaultRegion = "ap-southeast-2"
)

const (
	DefaultInitRetryDelay = 2 * time.Second
	DefaultHTTPTimeout    = 60 * time.Second
)

var (
	// ErrUnknownBucket is returned when a bucket name is not one of the known buckets.
	ErrUnknownBucket = errors.New("unknown bucket")

	bucketURLs = map[Bucket]string{
		Elevation: "https://nz-elevation.s3.ap-southeast-2.amazonaws.com",
		Imagery:   "https://nz-imagery.s3.ap-southeast-2.amazonaws.com",
	}
)

// Buckets returns the names of all known buckets.
func Buckets() []string {
	return []string{string(Elevation), string(Imagery)}
}

// ParseBucket turns a case-insensitive bucket name into a Bucket.
func ParseBucket(name string) (Bucket, error) {
	bucket := Bucket(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := bucketURLs[bucket]; !ok {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownBucket, name, strings.Join(Buckets(), ", "))
	}
	return bucket, nil
}

// BaseURL returns the object store base URL of the bucket.
func (b Bucket) BaseURL() string {
	return bucketURLs[b]
}

// CatalogURL returns the location of the root catalog document under base.
func CatalogURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/catalog.json"
}
