// Package minio provides a MinIO/S3-compatible implementation of core.Store.
//
// Every file is one object keyed <prefix>/<category>/<version>/<name>. The
// record ID is the object key. Modification times are kept in the Mtime
// user metadata (unix milliseconds) so that a touch does not depend on the
// server clock.
package minio

import (
	"fmt"

	"github.com/minio/minio-go/v7"
)

// DefaultStatConcurrency bounds parallel StatObject calls during a query.
const DefaultStatConcurrency = 10

// Config holds MinIO store configuration.
type Config struct {
	// Endpoint is the MinIO server address (e.g., "localhost:9000")
	Endpoint string

	// Bucket is the bucket holding index objects
	Bucket string

	// AccessKey is the access key ID for authentication
	AccessKey string

	// SecretKey is the secret access key for authentication
	SecretKey string

	// UseSSL enables HTTPS connections
	UseSSL bool

	// Prefix is an optional prefix for all object keys (for namespacing)
	Prefix string

	// Client is an optional pre-configured MinIO client
	// If provided, Endpoint/AccessKey/SecretKey are ignored
	Client *minio.Client

	// StatConcurrency limits concurrent StatObject calls while listing
	// Default: DefaultStatConcurrency
	StatConcurrency int
}

// validate checks if the configuration is valid.
// Either Client OR (Endpoint + Bucket + AccessKey + SecretKey) must be provided.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.StatConcurrency < 0 {
		return fmt.Errorf("stat concurrency must not be negative")
	}

	if c.Client != nil {
		return nil
	}

	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required when client is not provided")
	}

	return nil
}
