package crdtp

import (
	"github.com/fxamacker/cbor/v2"
)

// emptyMap is the CBOR encoding of {}, used when a builder gets nil params.
var emptyMap = []byte{0xa0}

// Serializable is a lazily-materialized outbound protocol message (a response
// or notification envelope). AppendSerialized materializes the complete CBOR
// message on demand; serialization is idempotent, so flattening twice yields
// identical bytes.
type Serializable interface {
	AppendSerialized(out []byte) ([]byte, error)
}

// Serialize materializes a Serializable into a fresh byte slice.
func Serialize(s Serializable) ([]byte, error) {
	return s.AppendSerialized(nil)
}

// RawMessage is a pre-serialized CBOR fragment used verbatim, typically a
// handler result or notification params payload.
type RawMessage []byte

func (m RawMessage) AppendSerialized(out []byte) ([]byte, error) {
	return append(out, m...), nil
}

type errorPayload struct {
	Code    int32  `cbor:"code"`
	Message string `cbor:"message"`
}

type successEnvelope struct {
	ID     int32           `cbor:"id"`
	Result cbor.RawMessage `cbor:"result"`
}

type errorEnvelope struct {
	ID    int32        `cbor:"id"`
	Error errorPayload `cbor:"error"`
}

type notificationEnvelope struct {
	Method string          `cbor:"method"`
	Params cbor.RawMessage `cbor:"params"`
}

type errorNotificationEnvelope struct {
	Error errorPayload `cbor:"error"`
}

type response struct {
	callID int32
	params Serializable
}

// CreateResponse builds the success envelope {id: callID, result: params}
// carrying the handler's result. A nil params serializes as an empty map.
func CreateResponse(callID int32, params Serializable) Serializable {
	return &response{callID: callID, params: params}
}

func (r *response) AppendSerialized(out []byte) ([]byte, error) {
	result := emptyMap
	if r.params != nil {
		b, err := Serialize(r.params)
		if err != nil {
			return nil, err
		}
		result = b
	}
	enc, err := cbor.Marshal(successEnvelope{ID: r.callID, Result: result})
	if err != nil {
		return nil, err
	}
	return append(out, enc...), nil
}

type errorResponse struct {
	callID int32
	resp   DispatchResponse
}

// CreateErrorResponse builds the error envelope
// {id: callID, error: {code, message}}. The DispatchResponse must be an
// error variant; passing Success or FallThrough is a contract violation.
func CreateErrorResponse(callID int32, resp DispatchResponse) Serializable {
	return &errorResponse{callID: callID, resp: resp}
}

func (r *errorResponse) AppendSerialized(out []byte) ([]byte, error) {
	enc, err := cbor.Marshal(errorEnvelope{
		ID: r.callID,
		Error: errorPayload{
			Code:    int32(r.resp.Code()),
			Message: r.resp.Message(),
		},
	})
	if err != nil {
		return nil, err
	}
	return append(out, enc...), nil
}

type notification struct {
	method string
	params Serializable
}

// CreateNotification builds the fire-and-forget envelope
// {method: method, params: params} with no call id. A nil params serializes
// as an empty map.
func CreateNotification(method string, params Serializable) Serializable {
	return &notification{method: method, params: params}
}

func (n *notification) AppendSerialized(out []byte) ([]byte, error) {
	params := emptyMap
	if n.params != nil {
		b, err := Serialize(n.params)
		if err != nil {
			return nil, err
		}
		params = b
	}
	enc, err := cbor.Marshal(notificationEnvelope{Method: n.method, Params: params})
	if err != nil {
		return nil, err
	}
	return append(out, enc...), nil
}

type errorNotification struct {
	resp DispatchResponse
}

// CreateErrorNotification builds a notification-shaped error report
// {error: {code, message}} for protocol-level errors not tied to one call,
// e.g. a parse failure discovered before a call id could be read. The
// DispatchResponse must be an error variant.
func CreateErrorNotification(resp DispatchResponse) Serializable {
	return &errorNotification{resp: resp}
}

func (n *errorNotification) AppendSerialized(out []byte) ([]byte, error) {
	enc, err := cbor.Marshal(errorNotificationEnvelope{
		Error: errorPayload{
			Code:    int32(n.resp.Code()),
			Message: n.resp.Message(),
		},
	})
	if err != nil {
		return nil, err
	}
	return append(out, enc...), nil
}
