package filestore

// Provider identifies the object store backend.
type Provider string

const ProviderMinIO Provider = "minio"

// DefaultBucket receives catalogs when no bucket is configured.
const DefaultBucket = "schemaroute"

// Config locates the object store that holds catalog snapshots. It is
// read from the "snapshot" section of the configuration file.
type Config struct {
	Provider  Provider `koanf:"provider"`
	Endpoint  string   `koanf:"endpoint"` // host:port, e.g. localhost:9000
	AccessKey string   `koanf:"access_key"`
	SecretKey string   `koanf:"secret_key"`
	UseSSL    bool     `koanf:"use_ssl"`
	Region    string   `koanf:"region"` // empty for MinIO
	Bucket    string   `koanf:"bucket"` // created on first save
}

// ApplyDefaults fills the provider and bucket.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderMinIO
	}
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
}

// Configured reports whether an endpoint has been set. Snapshot commands
// refuse to run without one.
func (c *Config) Configured() bool {
	return c != nil && c.Endpoint != ""
}
