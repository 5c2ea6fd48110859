package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-ai/lodestone/pkg/filter"
	"github.com/lodestone-ai/lodestone/pkg/types"
)

type stubStore struct {
	closed   bool
	closeErr error
}

func (s *stubStore) CreateIndex(context.Context, string, int) error { return nil }
func (s *stubStore) Upsert(context.Context, string, []Document) error {
	return nil
}
func (s *stubStore) Query(context.Context, string, []float32, int, *filter.Filter) ([]types.SearchResult, error) {
	return nil, nil
}
func (s *stubStore) DeleteIndex(context.Context, string) error { return nil }
func (s *stubStore) Close() error {
	s.closed = true
	return s.closeErr
}

func TestRegistryRegisterGet(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Get("docs")
	assert.False(t, ok)

	first := &stubStore{}
	reg.Register("docs", first)

	got, ok := reg.Get("docs")
	require.True(t, ok)
	assert.Same(t, VectorStore(first), got)

	// Re-registering replaces.
	second := &stubStore{}
	reg.Register("docs", second)
	got, _ = reg.Get("docs")
	assert.Same(t, VectorStore(second), got)
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	s := &stubStore{}
	reg.Register("docs", s)

	reg.Unregister("docs")
	_, ok := reg.Get("docs")
	assert.False(t, ok)
	assert.False(t, s.closed, "unregister must not close the store")
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a", &stubStore{})
	reg.Register("b", &stubStore{})

	assert.ElementsMatch(t, []string{"a", "b"}, reg.Names())
}

func TestRegistryClose(t *testing.T) {
	reg := NewRegistry()
	ok := &stubStore{}
	bad := &stubStore{closeErr: errors.New("flush failed")}
	reg.Register("ok", ok)
	reg.Register("bad", bad)

	err := reg.Close()
	assert.Error(t, err)
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
	assert.Empty(t, reg.Names())
}
