// Package crdtp implements the transport-and-dispatch machinery of a
// CBOR-based inspection protocol: envelope parsing, method-name routing to
// registered handlers, and construction of correlated responses and
// notifications. The wire format is CBOR; JSON conversion for text transports
// lives in the json subpackage.
package crdtp

// FrontendChannel is the sink handlers use to emit protocol messages back to
// the client, decoupling the dispatcher from the transport (a WebSocket, a
// pipe, an in-process debugger UI). Implementations are supplied by the
// embedding application; the dispatcher never introspects them.
//
// Messages sent through one channel instance from one goroutine are delivered
// in call order. The dispatch layer provides no internal locking; embedders
// sharing a channel across goroutines must serialize access themselves.
type FrontendChannel interface {
	// SendProtocolResponse emits the response correlated with callID. The
	// channel takes ownership of message.
	SendProtocolResponse(callID int32, message Serializable)
	// SendProtocolNotification emits a fire-and-forget notification.
	SendProtocolNotification(message Serializable)
	// FallThrough delegates a message whose method this dispatcher does not
	// own to an outer router. method and message are views into the
	// original raw message.
	FallThrough(callID int32, method []byte, message []byte)
	// FlushProtocolNotifications is the batch-flush point for any
	// notifications the channel has queued.
	FlushProtocolNotifications()
}
