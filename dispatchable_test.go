package crdtp

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustCBOR encodes v for use as a test message.
func mustCBOR(t *testing.T, v any) []byte {
	t.Helper()
	b, err := cbor.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestDispatchable(t *testing.T) {
	t.Run("parses a full envelope", func(t *testing.T) {
		msg := mustCBOR(t, map[string]any{
			"id":        int32(42),
			"method":    "Debugger.pause",
			"sessionId": "sess-1",
			"params":    map[string]any{"depth": 3},
		})
		d := NewDispatchable(msg)
		require.True(t, d.Ok())
		assert.True(t, d.HasCallID())
		assert.EqualValues(t, 42, d.CallID())
		assert.Equal(t, []byte("Debugger.pause"), d.Method())
		assert.Equal(t, []byte("sess-1"), d.SessionID())

		var params map[string]int
		require.NoError(t, cbor.Unmarshal(d.Params(), &params))
		assert.Equal(t, map[string]int{"depth": 3}, params)
	})

	t.Run("id sessionId and params are optional", func(t *testing.T) {
		d := NewDispatchable(mustCBOR(t, map[string]any{"method": "Ping"}))
		require.True(t, d.Ok())
		assert.False(t, d.HasCallID())
		assert.Empty(t, d.SessionID())
		assert.Nil(t, d.Params())
	})

	t.Run("params stay uninterpreted", func(t *testing.T) {
		// params is a list, not a map: still fine at envelope level,
		// shape validation belongs to the handler.
		msg := mustCBOR(t, map[string]any{
			"method": "Foo.bar",
			"params": []any{1, 2, 3},
		})
		d := NewDispatchable(msg)
		assert.True(t, d.Ok())
		assert.NotNil(t, d.Params())
	})

	t.Run("rejects a non-map top level", func(t *testing.T) {
		for name, msg := range map[string][]byte{
			"integer":    mustCBOR(t, 7),
			"string":     mustCBOR(t, "Ping"),
			"array":      mustCBOR(t, []any{"method"}),
			"empty":      {},
			"junk bytes": {0xff, 0xfe, 0xfd},
		} {
			t.Run(name, func(t *testing.T) {
				d := NewDispatchable(msg)
				assert.False(t, d.Ok())
				assert.EqualValues(t, DispatchCodeParseError, d.DispatchError().Code())
			})
		}
	})

	t.Run("rejects a missing method", func(t *testing.T) {
		d := NewDispatchable(mustCBOR(t, map[string]any{"id": int32(5)}))
		require.False(t, d.Ok())
		assert.EqualValues(t, DispatchCodeInvalidRequest, d.DispatchError().Code())
		// The call id survived parsing so the caller can still correlate
		// an error response.
		assert.True(t, d.HasCallID())
		assert.EqualValues(t, 5, d.CallID())
	})

	t.Run("rejects duplicate envelope keys", func(t *testing.T) {
		// {"method": "A", "method": "B"} encoded by hand
		msg := []byte{0xa2,
			0x66, 'm', 'e', 't', 'h', 'o', 'd', 0x61, 'A',
			0x66, 'm', 'e', 't', 'h', 'o', 'd', 0x61, 'B',
		}
		d := NewDispatchable(msg)
		assert.False(t, d.Ok())
	})
}
