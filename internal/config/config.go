// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageBlob     = "blob"
)

// Blob holds blob backend settings.
type Blob struct {
	Driver       string // fs|s3|memory
	FSRoot       string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3PathStyle  bool
	S3AccessKey  string
	S3SecretKey  string
	S3SessionTok string
}

// Config is the full runtime configuration of the idfws tooling.
type Config struct {
	StorageDriver string
	SQLitePath    string
	PostgresDSN   string
	Blob          Blob
	Strictness    string
	LogLevel      string
	LogFormat     string
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		StorageDriver: StorageMemory,
		SQLitePath:    "./idfws.db",
		PostgresDSN:   "postgres://localhost:5432/idfws?sslmode=disable",
		Blob: Blob{
			Driver:   "fs",
			FSRoot:   "./blobdata",
			S3Region: "us-east-1",
		},
		Strictness: "final",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// FromEnv overlays IDFWS_* variables on Default.
//
//	IDFWS_STORAGE_DRIVER  memory|sqlite|postgres|blob
//	IDFWS_SQLITE_PATH     database file for the sqlite driver
//	IDFWS_POSTGRES_DSN    connection string for the postgres driver
//	IDFWS_BLOB_DRIVER     fs|s3|memory
//	IDFWS_BLOB_FS_ROOT    directory root for the fs blob driver
//	IDFWS_BLOB_S3_*       BUCKET, REGION, ENDPOINT, PATH_STYLE, ACCESS_KEY, SECRET_KEY, SESSION_TOKEN
//	IDFWS_STRICTNESS      none|draft|final
//	IDFWS_LOG_LEVEL       debug|info|warn|error
//	IDFWS_LOG_FORMAT      text|json
func FromEnv() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup is FromEnv with an injectable variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("IDFWS_STORAGE_DRIVER", &cfg.StorageDriver)
	str("IDFWS_SQLITE_PATH", &cfg.SQLitePath)
	str("IDFWS_POSTGRES_DSN", &cfg.PostgresDSN)
	str("IDFWS_BLOB_DRIVER", &cfg.Blob.Driver)
	str("IDFWS_BLOB_FS_ROOT", &cfg.Blob.FSRoot)
	str("IDFWS_BLOB_S3_BUCKET", &cfg.Blob.S3Bucket)
	str("IDFWS_BLOB_S3_REGION", &cfg.Blob.S3Region)
	str("IDFWS_BLOB_S3_ENDPOINT", &cfg.Blob.S3Endpoint)
	str("IDFWS_BLOB_S3_ACCESS_KEY", &cfg.Blob.S3AccessKey)
	str("IDFWS_BLOB_S3_SECRET_KEY", &cfg.Blob.S3SecretKey)
	str("IDFWS_BLOB_S3_SESSION_TOKEN", &cfg.Blob.S3SessionTok)
	str("IDFWS_STRICTNESS", &cfg.Strictness)
	str("IDFWS_LOG_LEVEL", &cfg.LogLevel)
	str("IDFWS_LOG_FORMAT", &cfg.LogFormat)

	if v, ok := lookup("IDFWS_BLOB_S3_PATH_STYLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("IDFWS_BLOB_S3_PATH_STYLE: %w", err)
		}
		cfg.Blob.S3PathStyle = b
	}
	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	cfg.Blob.Driver = strings.ToLower(cfg.Blob.Driver)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver names and format enums.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StoragePostgres, StorageBlob:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.S3Bucket == "" {
		return fmt.Errorf("IDFWS_BLOB_S3_BUCKET required for s3 driver")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
