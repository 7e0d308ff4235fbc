// Package memstore is an in-memory filestore.Store for tests and local
// runs without an object store.
package memstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/filestore"
)

type object struct {
	body        []byte
	contentType string
	modified    time.Time
}

// Store keeps objects in nested maps keyed by bucket and key.
type Store struct {
	mu      sync.Mutex
	buckets map[string]map[string]object
	now     func() time.Time
}

var _ filestore.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{buckets: make(map[string]map[string]object), now: time.Now}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) EnsureBucket(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string]object)
	}
	return nil
}

func (s *Store) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, contentType string) (*filestore.ObjectInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read object body", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", bucket)
	}
	o := object{body: body, contentType: contentType, modified: s.now().UTC()}
	b[key] = o
	return info(key, o), nil
}

// ListObjects returns matching objects in key order. Recursive is ignored.
func (s *Store) ListObjects(_ context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", bucket)
	}

	out := make([]filestore.ObjectInfo, 0, len(b))
	for k, o := range b {
		if strings.HasPrefix(k, opts.Prefix) {
			out = append(out, *info(k, o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

type reader struct {
	*bytes.Reader
	info *filestore.ObjectInfo
}

func (r reader) Close() error                { return nil }
func (r reader) Info() *filestore.ObjectInfo { return r.info }

func (s *Store) GetObject(_ context.Context, bucket, key string) (filestore.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.buckets[bucket][key]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "object %s/%s does not exist", bucket, key)
	}
	return reader{Reader: bytes.NewReader(o.body), info: info(key, o)}, nil
}

func (s *Store) StatObject(ctx context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	obj, err := s.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return obj.Info(), nil
}

func info(key string, o object) *filestore.ObjectInfo {
	return &filestore.ObjectInfo{
		Key:          key,
		Size:         int64(len(o.body)),
		ContentType:  o.contentType,
		LastModified: o.modified,
	}
}
