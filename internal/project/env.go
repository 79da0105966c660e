package project

import (
	"fmt"
	"os"
	"strconv"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// Environment variables that override the config file.
const (
	EnvInputDir    = "PHOTOBOM_INPUT_DIR"
	EnvOutputDir   = "PHOTOBOM_OUTPUT_DIR"
	EnvDBPath      = "PHOTOBOM_DB_PATH"
	EnvLogLevel    = "PHOTOBOM_LOG_LEVEL"
	EnvS3Bucket    = "PHOTOBOM_S3_BUCKET"
	EnvS3Prefix    = "PHOTOBOM_S3_PREFIX"
	EnvS3Region    = "PHOTOBOM_S3_REGION"
	EnvS3Endpoint  = "PHOTOBOM_S3_ENDPOINT"
	EnvS3AccessKey = "PHOTOBOM_S3_ACCESS_KEY_ID"
	EnvS3SecretKey = "PHOTOBOM_S3_SECRET_ACCESS_KEY"
	EnvS3PathStyle = "PHOTOBOM_S3_PATH_STYLE"
)

// ApplyEnv overlays PHOTOBOM_* environment variables onto cfg.
// lookup is normally os.LookupEnv.
func ApplyEnv(cfg model.AppConfig, lookup func(string) (string, bool)) (model.AppConfig, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvInputDir, &cfg.InputDir)
	str(EnvOutputDir, &cfg.OutputDir)
	str(EnvDBPath, &cfg.DBPath)
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvS3Bucket, &cfg.S3.Bucket)
	str(EnvS3Prefix, &cfg.S3.Prefix)
	str(EnvS3Region, &cfg.S3.Region)
	str(EnvS3Endpoint, &cfg.S3.Endpoint)
	str(EnvS3AccessKey, &cfg.S3.AccessKeyID)
	str(EnvS3SecretKey, &cfg.S3.SecretAccessKey)

	if v, ok := lookup(EnvS3PathStyle); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvS3PathStyle, err)
		}
		cfg.S3.UsePathStyle = b
	}
	return cfg, nil
}
