package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "fs", cfg.Blob.Driver)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"IDFWS_STORAGE_DRIVER":     " SQLite ",
		"IDFWS_SQLITE_PATH":        "/tmp/x.db",
		"IDFWS_BLOB_DRIVER":        "s3",
		"IDFWS_BLOB_S3_BUCKET":     "models",
		"IDFWS_BLOB_S3_PATH_STYLE": "true",
		"IDFWS_LOG_FORMAT":         "json",
		"IDFWS_STRICTNESS":         "draft",
	}))
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, "models", cfg.Blob.S3Bucket)
	assert.True(t, cfg.Blob.S3PathStyle)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "draft", cfg.Strictness)
}

func TestInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"storage":    {"IDFWS_STORAGE_DRIVER": "mongo"},
		"blob":       {"IDFWS_BLOB_DRIVER": "gcs"},
		"bucket":     {"IDFWS_BLOB_DRIVER": "s3"},
		"path style": {"IDFWS_BLOB_S3_PATH_STYLE": "maybe"},
		"log format": {"IDFWS_LOG_FORMAT": "xml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(env))
			require.Error(t, err)
		})
	}
}
