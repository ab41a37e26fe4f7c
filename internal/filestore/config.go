package filestore

import "fmt"

// Provider identifies the object-store backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
	ProviderS3    Provider = "s3"
)

// Config holds all settings needed to connect to an object store.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider

	// Endpoint is the host:port of the storage server, or a full URL.
	// Example: "localhost:9000" for local MinIO. Empty means AWS for ProviderS3.
	Endpoint string

	// PublicEndpoint, when set, is the host presigned links are issued
	// against. Use it when the service reaches the store on an internal
	// address that clients cannot resolve.
	PublicEndpoint string

	AccessKey string
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region defaults to us-east-1. Setting it also spares the MinIO
	// client a bucket-location lookup before every call.
	Region string
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
		Region:    "us-east-1",
	}
}

// Validate checks that the config is usable by its provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMinIO:
		if c.Endpoint == "" {
			return fmt.Errorf("filestore: endpoint is required for provider %q", c.Provider)
		}
	case ProviderS3:
	default:
		return fmt.Errorf("filestore: unknown provider %q", c.Provider)
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("filestore: access key and secret key must be set together")
	}
	return nil
}
