package signed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	IDs []string `json:"ids"`
}

func TestRoundTrip(t *testing.T) {
	secret := []byte("s3cr3t")
	v, err := EncodeJSON(secret, payload{IDs: []string{"a", "b"}})
	require.NoError(t, err)

	var got payload
	require.NoError(t, DecodeJSON(secret, v, &got))
	assert.Equal(t, []string{"a", "b"}, got.IDs)
}

func TestRejectsTampering(t *testing.T) {
	secret := []byte("s3cr3t")
	v, err := EncodeJSON(secret, payload{IDs: []string{"a"}})
	require.NoError(t, err)

	var got payload
	assert.ErrorIs(t, DecodeJSON([]byte("other"), v, &got), ErrInvalid)

	parts := strings.SplitN(v, ".", 2)
	forged, err := EncodeJSON([]byte("attacker"), payload{IDs: []string{"zzz"}})
	require.NoError(t, err)
	mixed := strings.SplitN(forged, ".", 2)[0] + "." + parts[1]
	assert.ErrorIs(t, DecodeJSON(secret, mixed, &got), ErrInvalid)

	assert.ErrorIs(t, DecodeJSON(secret, "no-dot", &got), ErrInvalid)
	assert.ErrorIs(t, DecodeJSON(secret, "a.b.c", &got), ErrInvalid)
}
