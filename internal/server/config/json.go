package config

import (
	"encoding/json"
	"os"

	"github.com/smazurov/progresslapse/internal/flagx"
	"github.com/smazurov/progresslapse/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into
// the runtime Config struct. Empty fields leave the current value in
// place, so the JSON file can override settings selectively.
type JsonConfig struct {
	EndpointAddr      string         `json:"endpoint_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	JWTSecret         string         `json:"jwt_secret"`
	MediaMasterSecret string         `json:"media_master_secret"`
	S3User            string         `json:"s3_user"`
	S3Password        string         `json:"s3_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	TempDir           string         `json:"temp_dir"`
	WeeklyVideoQuota  int            `json:"weekly_video_quota"`
	FFmpegPath        string         `json:"ffmpeg_path"`
	PresignTTL        timex.Duration `json:"presign_ttl"`
}

// parseJson loads configuration values from a JSON file into the
// provided Config instance. The file path comes from the -c or -config
// command-line flags; when neither is set, no JSON file is loaded. A
// missing or malformed file panics, since starting with a half-read
// configuration is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.JWTSecret != "" {
		config.JWTSecret = c.JWTSecret
	}
	if c.MediaMasterSecret != "" {
		config.MediaMasterSecret = c.MediaMasterSecret
	}
	if c.S3User != "" {
		config.S3User = c.S3User
	}
	if c.S3Password != "" {
		config.S3Password = c.S3Password
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.TempDir != "" {
		config.TempDir = c.TempDir
	}
	if c.WeeklyVideoQuota != 0 {
		config.WeeklyVideoQuota = c.WeeklyVideoQuota
	}
	if c.FFmpegPath != "" {
		config.FFmpegPath = c.FFmpegPath
	}
	if c.PresignTTL.Duration != 0 {
		config.PresignTTL = c.PresignTTL.Duration
	}
}
