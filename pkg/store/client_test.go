package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(pageSize int) *Client {
	return NewClient(NewMemoryStore(), WithPageSize(pageSize), WithLogger(log.NewTestLogger()))
}

func collect(t *testing.T, c *Client, ref types.EntityTypeRef, filters Filters) []*types.ClusterEntity {
	t.Helper()
	var out []*types.ClusterEntity
	for entity, err := range c.ListByType(context.Background(), ref, filters) {
		require.NoError(t, err)
		out = append(out, entity)
	}
	return out
}

func TestClientCreateAssignsIDAndState(t *testing.T) {
	c := newTestClient(10)
	ctx := context.Background()

	entity := newV2Entity("alpha", "acme")
	entity.State = types.EntityStateResolved

	created, err := c.Create(ctx, entity)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "urn:vcloud:entity:cse:nativeCluster:"))
	assert.Equal(t, types.EntityStatePreValidation, created.State)
	assert.Equal(t, "urn:vcloud:type:cse:nativeCluster:2.0.0", created.EntityType)
	assert.Empty(t, entity.ID)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestClientGetMissing(t *testing.T) {
	c := newTestClient(10)
	_, err := c.Get(context.Background(), "urn:vcloud:entity:cse:nativeCluster:missing")
	require.Error(t, err)
	assert.True(t, types.IsEntityNotFound(err))
	assert.True(t, IsNotFoundError(err))
}

func TestClientListByTypePaging(t *testing.T) {
	c := newTestClient(2)
	ctx := context.Background()

	for _, name := range []string{"echo", "alpha", "delta", "charlie", "bravo"} {
		_, err := c.Create(ctx, newV2Entity(name, "acme"))
		require.NoError(t, err)
	}
	_, err := c.Create(ctx, newV1Entity("old"))
	require.NoError(t, err)

	entities := collect(t, c, types.NativeClusterType(types.Generation2), nil)
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta", "echo"}, names)

	// restartable
	assert.Len(t, collect(t, c, types.NativeClusterType(types.Generation2), nil), 5)
	assert.Len(t, collect(t, c, types.NativeClusterType(types.Generation1), nil), 1)
}

func TestClientListByTypeFilters(t *testing.T) {
	c := newTestClient(10)
	ctx := context.Background()

	_, err := c.Create(ctx, newV2Entity("alpha", "acme"))
	require.NoError(t, err)
	_, err = c.Create(ctx, newV2Entity("bravo", "globex"))
	require.NoError(t, err)

	got := collect(t, c, types.NativeClusterType(types.Generation2), Filters{"entity.metadata.orgName": "globex"})
	require.Len(t, got, 1)
	assert.Equal(t, "bravo", got[0].Name)

	got = collect(t, c, types.NativeClusterType(types.Generation2), Filters{"state": "RESOLVED"})
	assert.Empty(t, got)
}

func TestClientGetPage(t *testing.T) {
	c := newTestClient(10)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := c.Create(ctx, newV2Entity(fmt.Sprintf("c%d", i), "acme"))
		require.NoError(t, err)
	}

	ref := types.NativeClusterType(types.Generation2)
	page, err := c.GetPage(ctx, ref, nil, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.ResultTotal)
	require.Len(t, page.Values, 2)
	assert.Equal(t, "c2", page.Values[0].Name)

	page, err = c.GetPage(ctx, ref, nil, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Values)
	assert.Equal(t, 5, page.ResultTotal)
}

type countingPager struct {
	pages [][]*types.ClusterEntity
	calls []int
	err   error
}

func (p *countingPager) GetPage(ctx context.Context, ref types.EntityTypeRef, filters Filters, page, pageSize int) (*Page, error) {
	p.calls = append(p.calls, page)
	if p.err != nil {
		return nil, p.err
	}
	if page > len(p.pages) {
		return &Page{}, nil
	}
	return &Page{Values: p.pages[page-1]}, nil
}

func TestListByTypeIsLazy(t *testing.T) {
	pager := &countingPager{pages: [][]*types.ClusterEntity{
		{newV2Entity("a", "o"), newV2Entity("b", "o")},
		{newV2Entity("c", "o")},
	}}
	seq := ListByType(context.Background(), pager, types.NativeClusterType(types.Generation2), nil, 2)
	assert.Empty(t, pager.calls)

	for entity, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, "a", entity.Name)
		break
	}
	assert.Equal(t, []int{1}, pager.calls)

	pager.calls = nil
	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, []int{1, 2, 3}, pager.calls)
}

func TestListByTypeStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	pager := &countingPager{err: boom}

	var errs []error
	for _, err := range ListByType(context.Background(), pager, types.NativeClusterType(types.Generation2), nil, 2) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestClientResolve(t *testing.T) {
	c := newTestClient(10)
	ctx := context.Background()

	valid, err := c.Create(ctx, newV2Entity("alpha", "acme"))
	require.NoError(t, err)
	resolved, err := c.Resolve(ctx, valid.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EntityStateResolved, resolved.State)

	bad := newV2Entity("bravo", "acme")
	bad.Entity.(*types.V2Entity).Spec.Settings.OvdcNetwork = ""
	invalid, err := c.Create(ctx, bad)
	require.NoError(t, err)
	resolved, err = c.Resolve(ctx, invalid.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EntityStateResolutionError, resolved.State)

	stored, err := c.Get(ctx, invalid.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EntityStateResolutionError, stored.State)

	_, err = c.Resolve(ctx, "urn:vcloud:entity:cse:nativeCluster:none")
	assert.True(t, types.IsEntityNotFound(err))
}

func TestClientUpdateResetsStateOnTypeChange(t *testing.T) {
	c := newTestClient(10)
	ctx := context.Background()

	created, err := c.Create(ctx, newV1Entity("old"))
	require.NoError(t, err)
	resolved, err := c.Resolve(ctx, created.ID)
	require.NoError(t, err)

	same := *resolved
	same.Entity.(*types.V1Entity).Spec.Workers.Count = 3
	updated, err := c.Update(ctx, created.ID, &same)
	require.NoError(t, err)
	assert.Equal(t, types.EntityStateResolved, updated.State)

	moved := *resolved
	moved.Entity = newV2Entity("old", "acme").Entity
	updated, err = c.Update(ctx, created.ID, &moved)
	require.NoError(t, err)
	assert.Equal(t, types.EntityStatePreValidation, updated.State)
	assert.Equal(t, "urn:vcloud:type:cse:nativeCluster:2.0.0", updated.EntityType)

	_, err = c.Update(ctx, "urn:vcloud:entity:cse:nativeCluster:none", &moved)
	assert.True(t, types.IsEntityNotFound(err))
}

func TestClientDeleteAndHistory(t *testing.T) {
	c := newTestClient(10)
	ctx := context.Background()

	created, err := c.Create(ctx, newV2Entity("alpha", "acme"))
	require.NoError(t, err)
	_, err = c.Resolve(ctx, created.ID)
	require.NoError(t, err)

	history, err := c.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, types.EntityStateResolved, history[0].Entity.State)
	assert.Equal(t, types.EntityStatePreValidation, history[1].Entity.State)

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.True(t, types.IsEntityNotFound(err))
	assert.True(t, types.IsEntityNotFound(c.Delete(ctx, created.ID)))
}
