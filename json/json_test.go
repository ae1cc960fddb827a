package json

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestConvertJSONToCBOR(t *testing.T) {
	t.Run("rejects invalid JSON with an explicit error", func(t *testing.T) {
		for _, text := range []string{"", "{", `{"a":}`, "nope", `{"a":1}trailing`} {
			out, err := ConvertJSONToCBOR([]byte(text))
			assert.ErrorIs(t, err, ErrInvalidJSON, "input %q", text)
			assert.Nil(t, out, "input %q", text)
		}
	})

	t.Run("encodes integers as CBOR integers", func(t *testing.T) {
		out, err := ConvertJSONToCBOR([]byte(`{"id":7}`))
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, cbor.Unmarshal(out, &doc))
		assert.EqualValues(t, 7, doc["id"])
		assert.IsType(t, uint64(0), doc["id"])
	})

	t.Run("encodes fractional numbers as doubles", func(t *testing.T) {
		out, err := ConvertJSONToCBOR([]byte(`{"x":1.5}`))
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, cbor.Unmarshal(out, &doc))
		assert.Equal(t, 1.5, doc["x"])
	})

	t.Run("handles nested documents", func(t *testing.T) {
		out, err := ConvertJSONToCBOR([]byte(`{"a":[1,"two",null,true],"b":{"c":-3}}`))
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, cbor.Unmarshal(out, &doc))
		assert.Len(t, doc["a"], 4)
	})
}

func TestConvertCBORToJSON(t *testing.T) {
	t.Run("rejects malformed CBOR", func(t *testing.T) {
		_, err := ConvertCBORToJSON([]byte{0xff, 0x00})
		assert.Error(t, err)
	})

	t.Run("serializes byte strings as base64 strings", func(t *testing.T) {
		raw, err := cbor.Marshal(map[string]any{"data": []byte("hello")})
		require.NoError(t, err)

		out, err := ConvertCBORToJSON(raw)
		require.NoError(t, err)
		assert.Equal(t, "aGVsbG8=", gjson.GetBytes(out, "data").String())
	})

	t.Run("does not HTML-escape strings", func(t *testing.T) {
		raw, err := cbor.Marshal(map[string]any{"expr": "a < b && c > d"})
		require.NoError(t, err)

		out, err := ConvertCBORToJSON(raw)
		require.NoError(t, err)
		assert.Equal(t, `{"expr":"a < b && c > d"}`, string(out))
	})

	t.Run("rejects duplicate map keys", func(t *testing.T) {
		// {"a": 1, "a": 2} encoded by hand
		raw := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
		_, err := ConvertCBORToJSON(raw)
		assert.Error(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	docs := []string{
		`{}`,
		`[]`,
		`{"id":7,"method":"Ping","params":{}}`,
		`{"nested":{"list":[1,2.5,"three",false,null]}}`,
		`{"neg":-42,"big":1234567890}`,
		`"just a string"`,
		`true`,
		`{"unicode":"héllo €"}`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			encoded, err := ConvertJSONToCBOR([]byte(doc))
			require.NoError(t, err)

			back, err := ConvertCBORToJSON(encoded)
			require.NoError(t, err)
			assert.JSONEq(t, doc, string(back))
		})
	}
}
