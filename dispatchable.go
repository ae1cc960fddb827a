package crdtp

import (
	"github.com/fxamacker/cbor/v2"
)

var dispatchableDecMode cbor.DecMode

func init() {
	dm, err := cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		panic(err)
	}
	dispatchableDecMode = dm
}

type wireEnvelope struct {
	ID        *int32          `cbor:"id"`
	Method    string          `cbor:"method"`
	SessionID string          `cbor:"sessionId"`
	Params    cbor.RawMessage `cbor:"params"`
}

// Dispatchable is a parsed view over one inbound protocol message's envelope.
// The envelope must be a top-level CBOR map with at minimum a "method" string
// field; "id", "sessionId" and "params" are optional. Params are retained as
// an uninterpreted CBOR sub-document for the handler to deserialize against
// its own parameter schema; their internal shape is not validated here.
//
// When Ok reports false the other accessors carry no meaning and
// DispatchError describes the failure; callers must check Ok first.
type Dispatchable struct {
	ok        bool
	err       DispatchResponse
	hasCallID bool
	callID    int32
	method    []byte
	sessionID []byte
	params    cbor.RawMessage
}

// NewDispatchable parses a raw CBOR message. Parsing never fails with an
// error value; malformed input yields a Dispatchable with Ok() == false and
// the failure is reported through DispatchError. A call id that survived
// partial parsing (e.g. a map with an id but no method) remains available so
// the caller can still correlate an error response.
func NewDispatchable(data []byte) *Dispatchable {
	d := &Dispatchable{}
	var env wireEnvelope
	if err := dispatchableDecMode.Unmarshal(data, &env); err != nil {
		d.err = ParseError("Message must be a valid CBOR map: " + err.Error())
		return d
	}
	if env.ID != nil {
		d.hasCallID = true
		d.callID = *env.ID
	}
	if env.Method == "" {
		d.err = InvalidRequest("Message must have string 'method' property")
		return d
	}
	d.method = []byte(env.Method)
	d.sessionID = []byte(env.SessionID)
	d.params = env.Params
	d.ok = true
	return d
}

// Ok reports whether the envelope parsed successfully.
func (d *Dispatchable) Ok() bool {
	return d.ok
}

// DispatchError returns the ParseError or InvalidRequest response describing
// why Ok() reports false. Meaningless when Ok() reports true.
func (d *Dispatchable) DispatchError() DispatchResponse {
	return d.err
}

// HasCallID reports whether the message carried an "id" field.
func (d *Dispatchable) HasCallID() bool {
	return d.hasCallID
}

// CallID returns the call id; meaningful only when HasCallID reports true.
func (d *Dispatchable) CallID() int32 {
	return d.callID
}

// Method returns the UTF-8 method name, e.g. "Debugger.pause".
func (d *Dispatchable) Method() []byte {
	return d.method
}

// SessionID returns the session id bytes; empty when absent.
func (d *Dispatchable) SessionID() []byte {
	return d.sessionID
}

// Params returns the raw CBOR-encoded parameter object, or nil when absent.
func (d *Dispatchable) Params() []byte {
	return d.params
}
