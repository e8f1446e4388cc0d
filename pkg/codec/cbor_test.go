package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "personas/pkg/domain"
)

type sample struct {
	ID     id.ProfileID   `cbor:"id"`
	Fields map[string]any `cbor:"fields"`
}

func TestDeterministicEncoding(t *testing.T) {
	pid := id.NewProfileID()
	a := sample{ID: pid, Fields: map[string]any{"bio": "x", "city": "London", "age": 31}}
	b := sample{ID: pid, Fields: map[string]any{"age": 31, "city": "London", "bio": "x"}}

	encA, err := Marshal(a)
	require.NoError(t, err)
	encB, err := Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, encA, encB)

	var decoded sample
	require.NoError(t, Unmarshal(encA, &decoded))
	assert.Equal(t, pid, decoded.ID)
	assert.Equal(t, "London", decoded.Fields["city"])
}
