package cmd

import (
	"encoding/json"
	"testing"

	"github.com/rzbill/cse/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConvertGeneration1EntityToGeneration2(t *testing.T) {
	out, err := runCommand(t, newConvertCmd(), fixture("cluster_v1.yaml"), "--to", "2.0.0")
	require.NoError(t, err)

	var converted types.ClusterEntity
	require.NoError(t, json.Unmarshal([]byte(out), &converted))
	assert.Equal(t, types.Generation2, converted.Generation())
	assert.Equal(t, "urn:vcloud:type:cse:nativeCluster:2.0.0", converted.EntityType)

	v2, ok := converted.Entity.(*types.V2Entity)
	require.True(t, ok)
	assert.Equal(t, "beta", v2.Metadata.Name)
	assert.Equal(t, "vdc1", v2.Metadata.VirtualDataCenterName)
	assert.Equal(t, 2, v2.Spec.Topology.Workers.Count)
	assert.Equal(t, "net1", v2.Spec.Settings.OvdcNetwork)
	require.NotNil(t, v2.Status)
	require.NotNil(t, v2.Status.Nodes)
	require.Len(t, v2.Status.Nodes.Nfs, 1)
	assert.Equal(t, []string{"/data", "/backup"}, v2.Status.Nodes.Nfs[0].Exports)
}

func TestConvertRequestPayloadToYAML(t *testing.T) {
	out, err := runCommand(t, newConvertCmd(), fixture("resize.yaml"), "--to", "1.0.0", "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "urn:vcloud:type:cse:nativeCluster:1.0.0", doc["entityType"])

	entity, ok := doc["entity"].(map[string]any)
	require.True(t, ok)
	spec, ok := entity["spec"].(map[string]any)
	require.True(t, ok)
	workers, ok := spec["workers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, workers["count"])
}

func TestConvertRejectsUnknownGeneration(t *testing.T) {
	_, err := runCommand(t, newConvertCmd(), fixture("cluster_v2.json"), "--to", "3.0.0")
	require.Error(t, err)
	assert.True(t, types.IsUnsupportedPayloadVersion(err))
}

func TestConvertRequiresFile(t *testing.T) {
	_, err := runCommand(t, newConvertCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FILE")
}
