package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// runCommand executes c with args and returns what it wrote to stdout.
func runCommand(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c.SetArgs(args)
	c.SetOut(&out)
	c.SetErr(&errOut)
	err := c.Execute()
	return out.String(), err
}

// useTempDataDir points the commands at a fresh data directory for the test.
func useTempDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := dataDirOverride
	dataDirOverride = dir
	t.Cleanup(func() { dataDirOverride = prev })
	return dir
}

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

// importFixture stores a fixture and returns the assigned id.
func importFixture(t *testing.T, name string, resolve bool) string {
	t.Helper()
	args := []string{"import", fixture(name)}
	if resolve {
		args = append(args, "--resolve")
	}
	out, err := runCommand(t, newStoreCmd(), args...)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	return fields[0]
}
