package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/filestore/memstore"
	"github.com/koustreak/schemaroute/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource map[string]*schema.Table

func (s staticSource) ListTables(context.Context) (map[string]*schema.Table, error) {
	return s, nil
}

func sampleSource() staticSource {
	users := schema.NewTable("main", "users",
		[]database.Column{{Name: "id", Type: "integer"}, {Name: "email", Type: "string"}},
		[]database.Index{{Name: "users_pkey", Columns: []string{"id"}, Kind: database.IndexPrimary}},
		nil,
	)
	events := schema.NewTable("reporting", "events",
		[]database.Column{{Name: "id", Type: "bigint"}},
		nil,
		[]database.ForeignKey{{Name: "fk_events_user", Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}}},
	)
	return staticSource{users.QualifiedName(): users, events.QualifiedName(): events}
}

var snapshotTime = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	c, err := Build(context.Background(), sampleSource(), snapshotTime)
	require.NoError(t, err)

	assert.Equal(t, snapshotTime, c.CreatedAt)
	assert.Equal(t, []string{"main", "reporting"}, c.Connections)
	require.Contains(t, c.Tables, "main__users")
	assert.Equal(t, "PRI", c.Tables["main__users"].Columns[0].Key)
	assert.Len(t, c.Tables["reporting__events"].ForeignKeys, 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	c, err := Build(ctx, sampleSource(), snapshotTime)
	require.NoError(t, err)

	key := Key(snapshotTime)
	assert.Equal(t, "catalogs/20261017T093000Z.json", key)

	info, err := Save(ctx, store, "schemaroute", key, c)
	require.NoError(t, err)
	assert.Equal(t, "application/json", info.ContentType)
	assert.Positive(t, info.Size)

	loaded, err := Load(ctx, store, "schemaroute", key)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoad_Missing(t *testing.T) {
	store := memstore.New()
	_, err := Load(context.Background(), store, "schemaroute", "catalogs/nope.json")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestListAndLatest(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := Latest(ctx, store, "schemaroute")
	assert.True(t, errs.IsNotFound(err))

	c, err := Build(ctx, sampleSource(), snapshotTime)
	require.NoError(t, err)
	for _, ts := range []time.Time{snapshotTime, snapshotTime.Add(time.Hour), snapshotTime.Add(-time.Hour)} {
		_, err := Save(ctx, store, "schemaroute", Key(ts), c)
		require.NoError(t, err)
	}

	objs, err := List(ctx, store, "schemaroute")
	require.NoError(t, err)
	require.Len(t, objs, 3)
	assert.Equal(t, Key(snapshotTime.Add(-time.Hour)), objs[0].Key)

	latest, err := Latest(ctx, store, "schemaroute")
	require.NoError(t, err)
	assert.Equal(t, Key(snapshotTime.Add(time.Hour)), latest)
}

func TestDiff(t *testing.T) {
	ctx := context.Background()
	old, err := Build(ctx, sampleSource(), snapshotTime)
	require.NoError(t, err)
	same, err := Build(ctx, sampleSource(), snapshotTime.Add(time.Hour))
	require.NoError(t, err)

	ok, _, err := Diff(old, same, false)
	require.NoError(t, err)
	assert.True(t, ok, "creation time must not count as drift")

	src := sampleSource()
	src["main__audit"] = schema.NewTable("main", "audit", []database.Column{{Name: "line", Type: "text"}}, nil, nil)
	changed, err := Build(ctx, src, snapshotTime)
	require.NoError(t, err)

	ok, report, err := Diff(old, changed, false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, report, "main__audit")
}
