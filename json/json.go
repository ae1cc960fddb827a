// Package json converts complete protocol messages between the CBOR wire
// format and JSON text. The dispatch layer works on CBOR exclusively; these
// conversions exist at the outer transport boundary for text-based transports
// and debug tooling that expect JSON.
package json

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidJSON is returned by ConvertJSONToCBOR for input that is not
	// a structurally valid JSON document.
	ErrInvalidJSON = errors.New("invalid JSON document")

	decMode cbor.DecMode
)

func init() {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// ConvertJSONToCBOR parses a JSON document and re-encodes it as an equivalent
// CBOR message. Integers that fit int64 stay integers on the wire; other
// numbers become doubles. Validation is strict: malformed JSON is rejected
// with an explicit error rather than an empty output.
func ConvertJSONToCBOR(jsonBytes []byte) ([]byte, error) {
	if !gjson.ValidBytes(jsonBytes) {
		return nil, ErrInvalidJSON
	}
	dec := stdjson.NewDecoder(bytes.NewReader(jsonBytes))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	doc, err := normalizeNumbers(doc)
	if err != nil {
		return nil, err
	}
	out, err := cbor.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode CBOR: %w", err)
	}
	return out, nil
}

// ConvertCBORToJSON decodes a CBOR message and serializes it as JSON text.
// CBOR byte strings come out as base64-encoded JSON strings, matching the
// base64 bridging used for binary payloads on text transports. Strings go
// out verbatim, without the HTML escaping of <, > and & that
// encoding/json.Marshal applies.
func ConvertCBORToJSON(cborBytes []byte) ([]byte, error) {
	var doc any
	if err := decMode.Unmarshal(cborBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode CBOR: %w", err)
	}
	var buf bytes.Buffer
	enc := stdjson.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// normalizeNumbers rewrites json.Number leaves into int64 or float64 so the
// CBOR encoder picks the matching major type.
func normalizeNumbers(doc any) (any, error) {
	switch v := doc.(type) {
	case stdjson.Number:
		s := v.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := v.Int64(); err == nil {
				return n, nil
			}
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", s, err)
		}
		return f, nil
	case map[string]any:
		for k, elem := range v {
			norm, err := normalizeNumbers(elem)
			if err != nil {
				return nil, err
			}
			v[k] = norm
		}
		return v, nil
	case []any:
		for i, elem := range v {
			norm, err := normalizeNumbers(elem)
			if err != nil {
				return nil, err
			}
			v[i] = norm
		}
		return v, nil
	default:
		return doc, nil
	}
}
