package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := ApplyEnv(model.DefaultAppConfig(), mapLookup(map[string]string{
		EnvOutputDir:   "/srv/out",
		EnvDBPath:      "/srv/photobom.db",
		EnvLogLevel:    "debug",
		EnvS3Bucket:    "boms",
		EnvS3PathStyle: "true",
		EnvInputDir:    "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/srv/out", cfg.OutputDir)
	assert.Equal(t, "/srv/photobom.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "input_images", cfg.InputDir, "empty values are ignored")
	assert.True(t, cfg.S3.Enabled())
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestApplyEnvBadBool(t *testing.T) {
	_, err := ApplyEnv(model.DefaultAppConfig(), mapLookup(map[string]string{EnvS3PathStyle: "sometimes"}))
	assert.Error(t, err)
}

func TestApplyEnvNoOverrides(t *testing.T) {
	cfg, err := ApplyEnv(model.DefaultAppConfig(), mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppConfig().OutputDir, cfg.OutputDir)
}
