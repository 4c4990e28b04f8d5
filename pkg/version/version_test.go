package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setBuildInfo(t *testing.T, version, buildTime, commit string) {
	t.Helper()
	origVersion, origBuildTime, origCommit := Version, BuildTime, Commit
	t.Cleanup(func() {
		Version, BuildTime, Commit = origVersion, origBuildTime, origCommit
	})
	Version, BuildTime, Commit = version, buildTime, commit
}

func TestInfo(t *testing.T) {
	setBuildInfo(t, "1.0.0", "2023-01-01", "abcdef0123456789")

	info := Info()
	assert.Contains(t, info, "cse 1.0.0")
	assert.Contains(t, info, "(abcdef01)")
	assert.NotContains(t, info, "abcdef0123456789")
	assert.Contains(t, info, "2023-01-01")
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, info, "schemas=1.0.0,2.0.0")

	Commit = "abc123"
	assert.Contains(t, Info(), "(abc123)")
}

func TestMap(t *testing.T) {
	setBuildInfo(t, "1.0.0", "2023-01-01", "abcdef0123456789")

	m := Map()
	assert.Equal(t, "1.0.0", m["version"])
	assert.Equal(t, "2023-01-01", m["buildTime"])
	assert.Equal(t, "abcdef0123456789", m["commit"])
	assert.Equal(t, runtime.GOOS, m["os"])
	assert.Equal(t, runtime.GOARCH, m["arch"])
	assert.Equal(t, "1.0.0,2.0.0", m["schemaGenerations"])
	assert.True(t, strings.HasPrefix(m["goVersion"], "go1."))
}
