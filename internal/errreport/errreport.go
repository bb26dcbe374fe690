// Package errreport is the central channel for failures that happen after the caller has already moved on,
// such as a background write of an optimistic favorites update.
package errreport

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Operation names the kind of store access that failed.
type Operation string

const (
	OpGet    Operation = "get"
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpWrite  Operation = "write"
	OpDelete Operation = "delete"
	OpWatch  Operation = "watch"
)

// StoreError carries the failed path, the operation, and the payload the caller attempted to write.
type StoreError struct {
	Path                string
	Operation           Operation
	RequestResourceData interface{}
	Err                 error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// PermissionDenied reports whether the store refused the operation.
func (e *StoreError) PermissionDenied() bool {
	return status.Code(e.Err) == codes.PermissionDenied
}

// Wrap annotates err with the path, operation, and attempted payload. A nil err stays nil.
func Wrap(path string, op Operation, data interface{}, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Path: path, Operation: op, RequestResourceData: data, Err: err}
}

// IsPermissionDenied reports whether err, or anything it wraps, is a permission-denied store error.
func IsPermissionDenied(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.PermissionDenied()
	}
	return status.Code(err) == codes.PermissionDenied
}

// IsNotFound reports whether err is a gRPC NotFound status.
func IsNotFound(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		err = se.Err
	}
	return status.Code(err) == codes.NotFound
}

// Reporter fans reported errors out to subscribers and logs them.
type Reporter struct {
	mu     sync.Mutex
	next   int
	subs   map[int]func(error)
	logger *zap.Logger
}

// NewReporter makes a Reporter that logs every report with logger. A nil logger disables logging.
func NewReporter(logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{subs: make(map[int]func(error)), logger: logger}
}

// Subscribe registers fn to receive every future report. The returned function unsubscribes.
func (r *Reporter) Subscribe(fn func(error)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Report logs err and hands it to each subscriber.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.Error(err)}
	var se *StoreError
	if errors.As(err, &se) {
		fields = append(fields,
			zap.String("path", se.Path),
			zap.String("operation", string(se.Operation)),
			zap.Bool("permission_denied", se.PermissionDenied()),
		)
	}
	r.logger.Error("store operation failed", fields...)

	r.mu.Lock()
	subs := make([]func(error), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(err)
	}
}
