package neo4jstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsDatabase(t *testing.T) {
	s, err := New(Config{URI: "neo4j://localhost:7687", Username: "neo4j", Password: "password"})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "neo4j", s.database)
}

func TestNewInvalidURI(t *testing.T) {
	_, err := New(Config{URI: "://not-a-uri"})
	assert.Error(t, err)
}

func TestToFloat64s(t *testing.T) {
	assert.Equal(t, []float64{1, 0.5}, toFloat64s([]float32{1, 0.5}))
	assert.Empty(t, toFloat64s(nil))
}
