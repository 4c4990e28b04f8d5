package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rzbill/cse/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 25, cfg.Store.PageSize)
	assert.Equal(t, types.DefaultVendor, cfg.Entity.Vendor)
	assert.Contains(t, cfg.Log.RedactedFields, "sshKey")

	ref, err := cfg.SourceType()
	require.NoError(t, err)
	assert.Equal(t, "urn:vcloud:type:cse:nativeCluster:1.0.0", ref.ID())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
dataDir: /tmp/cse-data
log:
  level: debug
  format: json
store:
  backend: memory
  pageSize: 10
sizingPolicy:
  default: TKG small
  overrides:
    Org1/VDC1: TKG medium
  retry:
    timeout: 2s
    interval: 50ms
migration:
  enabled: true
  schedule: "0 3 * * *"
  target: 2.0.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cse-data", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Store.PageSize)
	assert.Equal(t, "TKG small", cfg.SizingPolicy.Default)
	// viper lower-cases map keys; the static lookup matches case-insensitively
	assert.Equal(t, "TKG medium", cfg.SizingPolicy.Overrides["org1/vdc1"])
	assert.Equal(t, 2*time.Second, cfg.SizingPolicy.Retry.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.SizingPolicy.Retry.Interval)
	assert.True(t, cfg.Migration.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Migration.Schedule)
	assert.Equal(t, "1.0.0", cfg.Migration.Source)
	assert.Equal(t, filepath.Join("/tmp/cse-data", "entities"), cfg.StorePath())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "store:\n  pageSize: 10\n")
	t.Setenv("CSE_STORE_PAGESIZE", "50")
	t.Setenv("CSE_SIZINGPOLICY_DEFAULT", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Store.PageSize)
	assert.Equal(t, "from-env", cfg.SizingPolicy.Default)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Store, cfg.Store)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"page size", "store:\n  pageSize: 0\n"},
		{"backend", "store:\n  backend: etcd\n"},
		{"target generation", "migration:\n  target: 9.0.0\n"},
		{"retry bounds", "sizingPolicy:\n  retry:\n    timeout: 10ms\n    interval: 1s\n"},
		{"syntax", "store: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
