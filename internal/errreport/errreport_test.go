package errreport

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("users/a", OpWrite, nil, nil))

	denied := status.Error(codes.PermissionDenied, "no")
	err := Wrap("users/a/favorites/data", OpUpdate, map[string]int{"x": 1}, denied)

	var se *StoreError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "users/a/favorites/data", se.Path)
	assert.Equal(t, OpUpdate, se.Operation)
	assert.True(t, se.PermissionDenied())
	assert.True(t, IsPermissionDenied(fmt.Errorf("outer: %w", err)))

	// wrapping twice keeps the innermost annotation
	again := Wrap("other", OpDelete, nil, err)
	assert.Same(t, err, again)
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain", errors.New("x"), false},
		{"status", status.Error(codes.NotFound, "gone"), true},
		{"wrapped", Wrap("p", OpGet, nil, status.Error(codes.NotFound, "gone")), true},
		{"denied", Wrap("p", OpGet, nil, status.Error(codes.PermissionDenied, "no")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestReporterSubscribe(t *testing.T) {
	r := NewReporter(nil)
	var got []error
	cancel := r.Subscribe(func(err error) { got = append(got, err) })

	first := errors.New("first")
	r.Report(first)
	r.Report(nil)
	cancel()
	r.Report(errors.New("after cancel"))

	assert.Equal(t, []error{first}, got)
}
