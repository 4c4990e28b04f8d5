package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseExportList(t *testing.T) {
	assert.Equal(t, []string{"/a", "/b"}, ParseExportList("['/a', '/b']"))
	assert.Equal(t, []string{"/data"}, ParseExportList(`["/data"]`))
	assert.Equal(t, []string{}, ParseExportList("[]"))
	assert.Equal(t, []string{}, ParseExportList(""))
}

func TestFormatExportList(t *testing.T) {
	assert.Equal(t, "['/a', '/b']", FormatExportList([]string{"/a", "/b"}))
	assert.Equal(t, "[]", FormatExportList(nil))
	assert.Equal(t, []string{"/a", "/b"}, ParseExportList(FormatExportList([]string{"/a", "/b"})))
}

func TestLegacyExportsJSON(t *testing.T) {
	t.Run("string form", func(t *testing.T) {
		var e LegacyExports
		require.NoError(t, json.Unmarshal([]byte(`"['/x', '/y']"`), &e))
		assert.True(t, e.IsEncoded())
		assert.Equal(t, []string{"/x", "/y"}, e.Paths())

		out, err := json.Marshal(e)
		require.NoError(t, err)
		assert.JSONEq(t, `"['/x', '/y']"`, string(out))
	})

	t.Run("list form", func(t *testing.T) {
		var e LegacyExports
		require.NoError(t, json.Unmarshal([]byte(`["/x"]`), &e))
		assert.False(t, e.IsEncoded())
		assert.Equal(t, []string{"/x"}, e.Paths())

		out, err := json.Marshal(e)
		require.NoError(t, err)
		assert.JSONEq(t, `["/x"]`, string(out))
	})

	t.Run("null", func(t *testing.T) {
		var e LegacyExports
		require.NoError(t, json.Unmarshal([]byte(`null`), &e))
		assert.Empty(t, e.Paths())
	})

	t.Run("number is rejected", func(t *testing.T) {
		var e LegacyExports
		assert.Error(t, json.Unmarshal([]byte(`42`), &e))
	})
}

func TestLegacyExportsYAML(t *testing.T) {
	var node V1NfsNode
	require.NoError(t, yaml.Unmarshal([]byte("name: nfsd-1\nip: 10.0.0.9\nexports: \"['/x', '/y']\"\n"), &node))
	assert.Equal(t, "nfsd-1", node.Name)
	assert.True(t, node.Exports.IsEncoded())
	assert.Equal(t, []string{"/x", "/y"}, node.Exports.Paths())

	out, err := yaml.Marshal(node)
	require.NoError(t, err)
	var again V1NfsNode
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, node, again)

	var list V1NfsNode
	require.NoError(t, yaml.Unmarshal([]byte("exports:\n  - /data\n"), &list))
	assert.False(t, list.Exports.IsEncoded())
	assert.Equal(t, []string{"/data"}, list.Exports.Paths())

	var empty V1NfsNode
	require.NoError(t, yaml.Unmarshal([]byte("exports: null\n"), &empty))
	assert.Nil(t, empty.Exports.Paths())

	var bad V1NfsNode
	assert.Error(t, yaml.Unmarshal([]byte("exports: {path: /x}\n"), &bad))
}
