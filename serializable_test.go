package crdtp

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodedError struct {
	Code    int32  `cbor:"code"`
	Message string `cbor:"message"`
}

type decodedEnvelope struct {
	ID     *int32          `cbor:"id"`
	Method string          `cbor:"method"`
	Result cbor.RawMessage `cbor:"result"`
	Params cbor.RawMessage `cbor:"params"`
	Error  *decodedError   `cbor:"error"`
}

func decodeEnvelope(t *testing.T, s Serializable) decodedEnvelope {
	t.Helper()
	raw, err := Serialize(s)
	require.NoError(t, err)
	var env decodedEnvelope
	require.NoError(t, cbor.Unmarshal(raw, &env))
	return env
}

func TestSerializable(t *testing.T) {
	t.Run("CreateResponse", func(t *testing.T) {
		t.Run("wraps the result payload", func(t *testing.T) {
			params := mustCBOR(t, map[string]any{"value": "ok"})
			env := decodeEnvelope(t, CreateResponse(7, RawMessage(params)))
			require.NotNil(t, env.ID)
			assert.EqualValues(t, 7, *env.ID)
			assert.Nil(t, env.Error)

			var result map[string]string
			require.NoError(t, cbor.Unmarshal(env.Result, &result))
			assert.Equal(t, map[string]string{"value": "ok"}, result)
		})

		t.Run("nil params become an empty result map", func(t *testing.T) {
			env := decodeEnvelope(t, CreateResponse(1, nil))
			var result map[string]any
			require.NoError(t, cbor.Unmarshal(env.Result, &result))
			assert.Empty(t, result)
		})
	})

	t.Run("CreateErrorResponse carries code and message", func(t *testing.T) {
		env := decodeEnvelope(t, CreateErrorResponse(3, InvalidParams("missing field 'x'")))
		require.NotNil(t, env.ID)
		assert.EqualValues(t, 3, *env.ID)
		require.NotNil(t, env.Error)
		assert.EqualValues(t, -32602, env.Error.Code)
		assert.Equal(t, "missing field 'x'", env.Error.Message)
	})

	t.Run("CreateNotification has no call id", func(t *testing.T) {
		params := mustCBOR(t, map[string]any{"reason": "paused"})
		env := decodeEnvelope(t, CreateNotification("Debugger.paused", RawMessage(params)))
		assert.Nil(t, env.ID)
		assert.Equal(t, "Debugger.paused", env.Method)
		assert.NotNil(t, env.Params)
	})

	t.Run("CreateErrorNotification is error-only", func(t *testing.T) {
		env := decodeEnvelope(t, CreateErrorNotification(ParseError("bad message")))
		assert.Nil(t, env.ID)
		assert.Empty(t, env.Method)
		require.NotNil(t, env.Error)
		assert.EqualValues(t, -32700, env.Error.Code)
		assert.Equal(t, "bad message", env.Error.Message)
	})

	t.Run("serialization is idempotent", func(t *testing.T) {
		messages := []Serializable{
			CreateResponse(7, RawMessage(mustCBOR(t, map[string]any{"a": 1}))),
			CreateErrorResponse(7, ServerError("boom")),
			CreateNotification("Foo.event", nil),
			CreateErrorNotification(InvalidRequest("nope")),
			RawMessage(mustCBOR(t, map[string]any{"raw": true})),
		}
		for _, msg := range messages {
			first, err := Serialize(msg)
			require.NoError(t, err)
			second, err := Serialize(msg)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	})

	t.Run("AppendSerialized appends to the given buffer", func(t *testing.T) {
		prefix := []byte{0xde, 0xad}
		out, err := CreateResponse(1, nil).AppendSerialized(prefix)
		require.NoError(t, err)
		assert.Equal(t, prefix, out[:2])
	})
}
