package filestore

import (
	"io"
	"time"
)

// ObjectInfo is the metadata of one stored object.
type ObjectInfo struct {
	Key          string    `json:"key" yaml:"key"`
	Size         int64     `json:"size" yaml:"size"` // -1 if unknown
	ContentType  string    `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty" yaml:"etag,omitempty"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`

	// IsDir marks a common prefix returned by a non-recursive listing.
	IsDir bool `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
}

// Object streams an object's content. Callers must Close it.
type Object interface {
	io.ReadCloser
	Info() *ObjectInfo
}

// ListOptions filters ListObjects.
type ListOptions struct {
	Prefix    string
	Recursive bool // false groups keys by "/" into IsDir entries
	Limit     int  // 0 means no limit
}
