// Package docstore is the narrow interface to the remote document database: get, list, set, merge and delete
// documents by slash-separated path, watch a document for changes, and commit batches of writes atomically.
package docstore

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxBatchSize is the largest number of writes a single batch may hold.
const MaxBatchSize = 500

// Store is a path-addressed document database.
type Store interface {
	// Get returns the document at path. A missing document is not an error: the returned Document reports Exists() == false.
	Get(ctx context.Context, path string) (*Document, error)

	// List returns every document directly inside the collection at path.
	List(ctx context.Context, collection string) ([]*Document, error)

	// Set overwrites the document at path with data.
	Set(ctx context.Context, path string, data interface{}) error

	// Merge writes only the given field paths, creating the document if needed. Fields not named are preserved.
	Merge(ctx context.Context, path string, updates ...FieldUpdate) error

	// Delete removes the document at path. Deleting a missing document is not an error.
	Delete(ctx context.Context, path string) error

	// Watch calls fn with the current state of the document and again after every change, in the order the changes are applied.
	// The returned function stops the watch; fn is not called after it returns.
	Watch(ctx context.Context, path string, fn func(*Document)) (func(), error)

	// Batch starts a set of writes that commit together or not at all.
	Batch() Batch
}

// Batch collects writes for an atomic commit.
type Batch interface {
	Set(path string, data interface{})
	Merge(path string, updates ...FieldUpdate)
	Delete(path string)
	Len() int
	Commit(ctx context.Context) error
}

// FieldUpdate is a write to a single field path inside a document, e.g. ["teams", "33"].
type FieldUpdate struct {
	Path  []string
	Value interface{}
}

type deleteField struct{}

// Delete is used as a FieldUpdate Value to remove the field at that path.
var Delete interface{} = deleteField{}

// IsDelete reports whether v is the Delete sentinel.
func IsDelete(v interface{}) bool {
	_, ok := v.(deleteField)
	return ok
}

// Update is shorthand for a FieldUpdate at the dotted field path.
func Update(dotted string, value interface{}) FieldUpdate {
	return FieldUpdate{Path: strings.Split(dotted, "."), Value: value}
}

func (u FieldUpdate) String() string {
	if IsDelete(u.Value) {
		return fmt.Sprintf("%s: <delete>", strings.Join(u.Path, "."))
	}
	return fmt.Sprintf("%s: %+v", strings.Join(u.Path, "."), u.Value)
}

// Document is a snapshot of a single document.
type Document struct {
	// Path is the slash-separated path of the document relative to the database root.
	Path string

	// ID is the last segment of Path.
	ID string

	exists bool
	data   map[string]interface{}
	decode func(interface{}) error
}

// Exists reports whether the document existed when the snapshot was taken.
func (d *Document) Exists() bool {
	return d != nil && d.exists
}

// Data returns the raw field map of the document, or nil if it does not exist.
func (d *Document) Data() map[string]interface{} {
	if !d.Exists() {
		return nil
	}
	return d.data
}

// DataTo decodes the document into v.
func (d *Document) DataTo(v interface{}) error {
	if !d.Exists() {
		return fmt.Errorf("DataTo: document %s does not exist", d.Path)
	}
	return d.decode(v)
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("path %q has an empty segment", path)
		}
	}
	return segs, nil
}

func checkDocPath(path string) (id string, err error) {
	segs, err := splitPath(path)
	if err != nil {
		return "", err
	}
	if len(segs)%2 != 0 {
		return "", fmt.Errorf("path %q does not name a document", path)
	}
	return segs[len(segs)-1], nil
}

func checkCollectionPath(path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs)%2 != 1 {
		return fmt.Errorf("path %q does not name a collection", path)
	}
	return nil
}

// Normalize converts v to the generic JSON form (maps, slices, float64, string, bool, nil) the way it would be stored.
func Normalize(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToMap normalizes a struct or map into a field map.
func ToMap(v interface{}) (map[string]interface{}, error) {
	n, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return make(map[string]interface{}), nil
	}
	m, ok := n.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("ToMap: %T does not encode to an object", v)
	}
	return m, nil
}

// Decode fills out from a field map.
func Decode(m map[string]interface{}, out interface{}) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// ApplyUpdates applies field updates to a field map in place. Intermediate maps are created as needed.
// Deleting a field whose parent does not exist is a no-op.
func ApplyUpdates(tree map[string]interface{}, updates []FieldUpdate) error {
	for _, u := range updates {
		if len(u.Path) == 0 {
			return fmt.Errorf("ApplyUpdates: empty field path")
		}
		node := tree
		missing := false
		for _, seg := range u.Path[:len(u.Path)-1] {
			child, ok := node[seg].(map[string]interface{})
			if !ok {
				if IsDelete(u.Value) {
					missing = true
					break
				}
				child = make(map[string]interface{})
				node[seg] = child
			}
			node = child
		}
		if missing {
			continue
		}
		last := u.Path[len(u.Path)-1]
		if IsDelete(u.Value) {
			delete(node, last)
			continue
		}
		v, err := Normalize(u.Value)
		if err != nil {
			return fmt.Errorf("ApplyUpdates: unable to encode %s: %w", strings.Join(u.Path, "."), err)
		}
		node[last] = v
	}
	return nil
}
