package crdtp

import (
	"fmt"
)

// Handler executes one dispatched command. It receives the channel to emit
// its own response and/or notifications through, and the parsed message
// carrying the call id, session id and raw params.
type Handler func(ch FrontendChannel, call *Dispatchable)

// UberDispatcher routes inbound protocol messages to registered method
// handlers by exact method name. It holds a non-owning reference to the
// frontend channel, which handlers use to push responses and notifications.
// One dispatcher lives for the duration of one inspected session.
//
// UberDispatcher is not safe for concurrent use; dispatch runs on whatever
// goroutine owns the session.
type UberDispatcher struct {
	channel  FrontendChannel
	handlers map[string]Handler
}

// NewUberDispatcher creates a dispatcher emitting through channel.
func NewUberDispatcher(channel FrontendChannel) *UberDispatcher {
	return &UberDispatcher{
		channel:  channel,
		handlers: make(map[string]Handler),
	}
}

// Channel returns the frontend channel handlers emit through.
func (u *UberDispatcher) Channel() FrontendChannel {
	return u.channel
}

// Handle registers handler for the exact method name. At most one handler may
// own a name; registering a second handler for an existing name is a
// programming error and panics.
func (u *UberDispatcher) Handle(method string, handler Handler) {
	if _, ok := u.handlers[method]; ok {
		panic(fmt.Sprintf("crdtp: handler for method %q already registered", method))
	}
	u.handlers[method] = handler
}

// DispatchResult is the transient outcome of one Dispatch call: whether the
// method resolved to a handler, and a Run operation that executes the
// resolved handler exactly once.
type DispatchResult struct {
	dispatcher *UberDispatcher
	call       *Dispatchable
	handler    Handler
	ran        bool
}

// MethodFound reports whether the message parsed and its method resolved to
// a registered handler.
func (r *DispatchResult) MethodFound() bool {
	return r.handler != nil
}

// Run executes the resolved handler. It must be called at most once and only
// when MethodFound reports true; violating either is a programming error and
// panics. All observable effects of a dispatch happen here.
func (r *DispatchResult) Run() {
	if r.handler == nil {
		panic("crdtp: Run on a dispatch result with no resolved method")
	}
	if r.ran {
		panic("crdtp: dispatch result already run")
	}
	r.ran = true
	r.handler(r.dispatcher.channel, r.call)
}

// Dispatch resolves the message's method against the handler registry.
// Lookup is by exact name; there is no prefix or wildcard routing. Dispatch
// itself has no side effects: a message that failed envelope parsing or names
// an unregistered method yields a result with MethodFound() == false, and the
// caller decides between a ParseError/MethodNotFound response and falling
// through to an outer router.
func (u *UberDispatcher) Dispatch(call *Dispatchable) *DispatchResult {
	res := &DispatchResult{dispatcher: u, call: call}
	if !call.Ok() {
		return res
	}
	res.handler = u.handlers[string(call.Method())]
	return res
}
