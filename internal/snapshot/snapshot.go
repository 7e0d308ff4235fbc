// Package snapshot captures the described schema of every connection into
// a Catalog and persists catalogs as JSON objects in a filestore.Store.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/filestore"
	"github.com/koustreak/schemaroute/internal/schema"
)

// Prefix is prepended to every catalog object key.
const Prefix = "catalogs/"

const contentType = "application/json"

// Source supplies every table of every connection, keyed by qualified name.
type Source interface {
	ListTables(ctx context.Context) (map[string]*schema.Table, error)
}

// Catalog is a point-in-time description of every table.
type Catalog struct {
	CreatedAt   time.Time        `json:"created_at"`
	Connections []string         `json:"connections"`
	Tables      map[string]Table `json:"tables"`
}

// Table is the stored form of one table.
type Table struct {
	Connection  string                    `json:"connection"`
	Name        string                    `json:"name"`
	Columns     []schema.ColumnDescriptor `json:"columns"`
	ForeignKeys []database.ForeignKey     `json:"foreign_keys"`
}

// Build describes every table src reports.
func Build(ctx context.Context, src Source, now time.Time) (*Catalog, error) {
	tables, err := src.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		CreatedAt:   now.UTC(),
		Connections: []string{},
		Tables:      make(map[string]Table, len(tables)),
	}

	seen := make(map[string]bool)
	for key, t := range tables {
		c.Tables[key] = Table{
			Connection:  t.Connection,
			Name:        t.Name,
			Columns:     schema.Describe(t),
			ForeignKeys: t.ForeignKeys,
		}
		if !seen[t.Connection] {
			seen[t.Connection] = true
			c.Connections = append(c.Connections, t.Connection)
		}
	}
	sort.Strings(c.Connections)
	return c, nil
}

// Key returns the object key for a catalog taken at t.
func Key(t time.Time) string {
	return Prefix + t.UTC().Format("20060102T150405Z") + ".json"
}

// Save writes c under key, creating bucket if needed.
func Save(ctx context.Context, store filestore.Store, bucket, key string, c *Catalog) (*filestore.ObjectInfo, error) {
	body, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to encode catalog", err)
	}

	if err := store.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}
	return store.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), contentType)
}

// Load reads the catalog stored under key.
func Load(ctx context.Context, store filestore.Store, bucket, key string) (*Catalog, error) {
	obj, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	var c Catalog
	if err := json.NewDecoder(obj).Decode(&c); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to decode catalog "+key, err)
	}
	return &c, nil
}

// List returns stored catalogs, oldest first.
func List(ctx context.Context, store filestore.Store, bucket string) ([]filestore.ObjectInfo, error) {
	objs, err := store.ListObjects(ctx, bucket, filestore.ListOptions{Prefix: Prefix, Recursive: true})
	if err != nil {
		return nil, err
	}

	out := make([]filestore.ObjectInfo, 0, len(objs))
	for _, o := range objs {
		if !o.IsDir && strings.HasSuffix(o.Key, ".json") {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Latest returns the key of the newest stored catalog.
func Latest(ctx context.Context, store filestore.Store, bucket string) (string, error) {
	objs, err := List(ctx, store, bucket)
	if err != nil {
		return "", err
	}
	if len(objs) == 0 {
		return "", errs.New(errs.ErrKindNotFound, "no catalogs stored in bucket "+bucket)
	}
	return objs[len(objs)-1].Key, nil
}
