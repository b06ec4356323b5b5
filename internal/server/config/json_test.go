package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"progresslapse"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseJson_NoFlagLeavesConfigUntouched(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8080", c.EndpointAddr)
}

func TestParseJson_OverridesSelectively(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_addr": ":9090",
		"media_master_secret": "prod-secret",
		"weekly_video_quota": 25,
		"presign_ttl": "30m"
	}`), 0o600))

	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":9090", c.EndpointAddr)
	assert.Equal(t, "prod-secret", c.MediaMasterSecret)
	assert.Equal(t, 25, c.WeeklyVideoQuota)
	assert.Equal(t, 30*time.Minute, c.PresignTTL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "progress-media", c.S3Bucket)
	assert.Equal(t, "ffmpeg", c.FFmpegPath)
}

func TestParseJson_MalformedFilePanics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	withArgs(t, "-config", path)

	var c Config
	c.LoadDefaults()
	assert.Panics(t, func() { parseJson(&c) })
}
