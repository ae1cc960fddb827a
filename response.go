package crdtp

// DispatchCode identifies the outcome of executing a dispatched command.
// Success and FallThrough are small positive values; error codes are the
// stable JSON-RPC numbers used on the wire, so the code round-trips through
// the error envelope unchanged.
type DispatchCode int32

const (
	DispatchCodeSuccess     DispatchCode = 1
	DispatchCodeFallThrough DispatchCode = 2

	DispatchCodeParseError      DispatchCode = -32700
	DispatchCodeInvalidRequest  DispatchCode = -32600
	DispatchCodeMethodNotFound  DispatchCode = -32601
	DispatchCodeInvalidParams   DispatchCode = -32602
	DispatchCodeInternalError   DispatchCode = -32603
	DispatchCodeServerError     DispatchCode = -32000
	DispatchCodeSessionNotFound DispatchCode = -32001
)

// DispatchResponse is the tagged result of one dispatch attempt: success,
// fall-through (the method is not owned by this dispatcher), or one of the
// error variants carrying a code and message. Exactly one variant is active.
type DispatchResponse struct {
	code    DispatchCode
	message string
}

// Success reports that the command executed with no error payload.
func Success() DispatchResponse {
	return DispatchResponse{code: DispatchCodeSuccess}
}

// FallThrough reports that this dispatcher does not own the method and the
// caller should try another router.
func FallThrough() DispatchResponse {
	return DispatchResponse{code: DispatchCodeFallThrough}
}

// ParseError reports a malformed message that could not be parsed.
func ParseError(message string) DispatchResponse {
	return DispatchResponse{code: DispatchCodeParseError, message: message}
}

// InvalidRequest reports a well-formed message with an invalid envelope.
func InvalidRequest(message string) DispatchResponse {
	return DispatchResponse{code: DispatchCodeInvalidRequest, message: message}
}

// MethodNotFound reports a method name with no registered handler.
func MethodNotFound(message string) DispatchResponse {
	return DispatchResponse{code: DispatchCodeMethodNotFound, message: message}
}

// InvalidParams reports params that failed to deserialize against the
// handler's expected parameter shape.
func InvalidParams(message string) DispatchResponse {
	return DispatchResponse{code: DispatchCodeInvalidParams, message: message}
}

// InternalError reports a failure internal to the dispatch machinery.
func InternalError() DispatchResponse {
	return DispatchResponse{code: DispatchCodeInternalError, message: "Internal error"}
}

// ServerError reports a handler-internal failure.
func ServerError(message string) DispatchResponse {
	return DispatchResponse{code: DispatchCodeServerError, message: message}
}

// SessionNotFound reports a session id that resolves to no live session.
func SessionNotFound(message string) DispatchResponse {
	return DispatchResponse{code: DispatchCodeSessionNotFound, message: message}
}

// IsSuccess reports whether the command executed successfully.
func (r DispatchResponse) IsSuccess() bool {
	return r.code == DispatchCodeSuccess
}

// IsFallThrough reports whether the method should be tried elsewhere.
func (r DispatchResponse) IsFallThrough() bool {
	return r.code == DispatchCodeFallThrough
}

// IsError reports whether an error variant is active.
func (r DispatchResponse) IsError() bool {
	return r.code < 0
}

// Code returns the dispatch code.
func (r DispatchResponse) Code() DispatchCode {
	return r.code
}

// Message returns the error message; empty for Success and FallThrough.
func (r DispatchResponse) Message() string {
	return r.message
}
