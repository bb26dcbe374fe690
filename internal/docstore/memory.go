package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/abozbere2001-collab/Nabd6/internal/errreport"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Memory is an in-process Store. Watch callbacks run synchronously on the writing goroutine, so a callback must not
// write back to the same Memory.
type Memory struct {
	// notify serializes a write together with the delivery of its watch callbacks, which keeps callbacks in write order.
	notify sync.Mutex

	mu         sync.Mutex
	docs       map[string]map[string]interface{}
	watchers   map[string]map[int]func(*Document)
	nextWatch  int
	denyWrites []string
}

// NewMemory makes an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]map[string]interface{}),
		watchers: make(map[string]map[int]func(*Document)),
	}
}

// DenyWrites makes every write to a path starting with prefix fail with PermissionDenied.
func (m *Memory) DenyWrites(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denyWrites = append(m.denyWrites, prefix)
}

// AllowWrites removes every DenyWrites rule.
func (m *Memory) AllowWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denyWrites = nil
}

func (m *Memory) deniedLocked(path string) bool {
	for _, p := range m.denyWrites {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (m *Memory) snapshotLocked(path, id string) *Document {
	doc := &Document{Path: path, ID: id}
	data, ok := m.docs[path]
	if !ok {
		return doc
	}
	cp, err := ToMap(data)
	if err != nil {
		// data was produced by Normalize, so it always re-encodes
		panic(fmt.Errorf("memory store holds unencodable data at %s: %w", path, err))
	}
	doc.exists = true
	doc.data = cp
	doc.decode = func(v interface{}) error { return Decode(cp, v) }
	return doc
}

func (m *Memory) Get(ctx context.Context, path string) (*Document, error) {
	id, err := checkDocPath(path)
	if err != nil {
		return nil, errreport.Wrap(path, errreport.OpGet, nil, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errreport.Wrap(path, errreport.OpGet, nil, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(path, id), nil
}

func (m *Memory) List(ctx context.Context, collection string) ([]*Document, error) {
	if err := checkCollectionPath(collection); err != nil {
		return nil, errreport.Wrap(collection, errreport.OpList, nil, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errreport.Wrap(collection, errreport.OpList, nil, err)
	}
	prefix := collection + "/"
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0)
	for p := range m.docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		id := strings.TrimPrefix(p, prefix)
		if strings.Contains(id, "/") {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]*Document, len(ids))
	for i, id := range ids {
		docs[i] = m.snapshotLocked(prefix+id, id)
	}
	return docs, nil
}

type memWrite struct {
	path    string
	op      errreport.Operation
	data    interface{}
	set     map[string]interface{}
	updates []FieldUpdate
	delete  bool
}

func (m *Memory) prepare(w *memWrite) error {
	if _, err := checkDocPath(w.path); err != nil {
		return errreport.Wrap(w.path, w.op, w.data, err)
	}
	if w.op == errreport.OpWrite && w.updates == nil && !w.delete {
		set, err := ToMap(w.data)
		if err != nil {
			return errreport.Wrap(w.path, w.op, w.data, err)
		}
		w.set = set
	}
	return nil
}

func (m *Memory) applyLocked(w *memWrite) error {
	switch {
	case w.delete:
		delete(m.docs, w.path)
	case w.updates != nil:
		cur, ok := m.docs[w.path]
		if !ok {
			cur = make(map[string]interface{})
		}
		if err := ApplyUpdates(cur, w.updates); err != nil {
			return errreport.Wrap(w.path, w.op, w.data, err)
		}
		m.docs[w.path] = cur
	default:
		m.docs[w.path] = w.set
	}
	return nil
}

// commit applies writes atomically and then delivers watch callbacks for each touched document.
func (m *Memory) commit(ctx context.Context, writes []*memWrite) error {
	for _, w := range writes {
		if err := m.prepare(w); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.notify.Lock()
	defer m.notify.Unlock()

	m.mu.Lock()
	for _, w := range writes {
		if m.deniedLocked(w.path) {
			m.mu.Unlock()
			return errreport.Wrap(w.path, w.op, w.data, status.Errorf(codes.PermissionDenied, "missing or insufficient permissions for %s", w.path))
		}
	}
	// stage on a copy so a failing update leaves the store untouched
	backup := make(map[string]map[string]interface{}, len(writes))
	for _, w := range writes {
		if _, seen := backup[w.path]; seen {
			continue
		}
		if cur, ok := m.docs[w.path]; ok {
			cp, _ := ToMap(cur)
			backup[w.path] = cp
		} else {
			backup[w.path] = nil
		}
	}
	for _, w := range writes {
		if err := m.applyLocked(w); err != nil {
			for p, d := range backup {
				if d == nil {
					delete(m.docs, p)
				} else {
					m.docs[p] = d
				}
			}
			m.mu.Unlock()
			return err
		}
	}

	type delivery struct {
		doc *Document
		fns []func(*Document)
	}
	deliveries := make([]delivery, 0, len(writes))
	for _, w := range writes {
		ws := m.watchers[w.path]
		if len(ws) == 0 {
			continue
		}
		fns := make([]func(*Document), 0, len(ws))
		ids := make([]int, 0, len(ws))
		for id := range ws {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fns = append(fns, ws[id])
		}
		id, _ := checkDocPath(w.path)
		deliveries = append(deliveries, delivery{doc: m.snapshotLocked(w.path, id), fns: fns})
	}
	m.mu.Unlock()

	for _, d := range deliveries {
		for _, fn := range d.fns {
			fn(d.doc)
		}
	}
	return nil
}

func (m *Memory) Set(ctx context.Context, path string, data interface{}) error {
	return m.commit(ctx, []*memWrite{{path: path, op: errreport.OpWrite, data: data}})
}

func (m *Memory) Merge(ctx context.Context, path string, updates ...FieldUpdate) error {
	if updates == nil {
		updates = []FieldUpdate{}
	}
	return m.commit(ctx, []*memWrite{{path: path, op: errreport.OpUpdate, data: updates, updates: updates}})
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	return m.commit(ctx, []*memWrite{{path: path, op: errreport.OpDelete, delete: true}})
}

func (m *Memory) Watch(ctx context.Context, path string, fn func(*Document)) (func(), error) {
	id, err := checkDocPath(path)
	if err != nil {
		return nil, errreport.Wrap(path, errreport.OpWatch, nil, err)
	}

	m.notify.Lock()
	m.mu.Lock()
	wid := m.nextWatch
	m.nextWatch++
	if m.watchers[path] == nil {
		m.watchers[path] = make(map[int]func(*Document))
	}
	m.watchers[path][wid] = fn
	current := m.snapshotLocked(path, id)
	m.mu.Unlock()
	fn(current)
	m.notify.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers[path], wid)
			if len(m.watchers[path]) == 0 {
				delete(m.watchers, path)
			}
			m.mu.Unlock()
		})
	}, nil
}

// Watchers returns the number of active watches on path.
func (m *Memory) Watchers(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers[path])
}

func (m *Memory) Batch() Batch {
	return &memBatch{m: m}
}

type memBatch struct {
	m      *Memory
	writes []*memWrite
}

func (b *memBatch) Set(path string, data interface{}) {
	b.writes = append(b.writes, &memWrite{path: path, op: errreport.OpWrite, data: data})
}

func (b *memBatch) Merge(path string, updates ...FieldUpdate) {
	if updates == nil {
		updates = []FieldUpdate{}
	}
	b.writes = append(b.writes, &memWrite{path: path, op: errreport.OpUpdate, data: updates, updates: updates})
}

func (b *memBatch) Delete(path string) {
	b.writes = append(b.writes, &memWrite{path: path, op: errreport.OpDelete, delete: true})
}

func (b *memBatch) Len() int {
	return len(b.writes)
}

func (b *memBatch) Commit(ctx context.Context) error {
	if len(b.writes) > MaxBatchSize {
		return fmt.Errorf("Commit: batch of %d writes exceeds limit of %d", len(b.writes), MaxBatchSize)
	}
	if len(b.writes) == 0 {
		return nil
	}
	return b.m.commit(ctx, b.writes)
}
