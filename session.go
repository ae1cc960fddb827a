package crdtp

import (
	"log/slog"

	cjson "github.com/kazmanavt/crdtp/json"
)

// Session drives one inspected session: raw message in, parsed envelope,
// method routing, and a correlated response or error report out through the
// frontend channel. It is synchronous call/return code with no internal
// locking; all dispatch runs on the goroutine that owns the session.
type Session struct {
	dispatcher *UberDispatcher
	channel    FrontendChannel
	log        *slog.Logger
}

// NewSession creates a session emitting through channel.
//
// Parameters:
//   - channel: The frontend channel responses and notifications go out on
//   - _log: Optional logger (defaults to slog.Default() if nil)
func NewSession(channel FrontendChannel, _log *slog.Logger) *Session {
	if _log == nil {
		_log = slog.Default()
	}
	return &Session{
		dispatcher: NewUberDispatcher(channel),
		channel:    channel,
		log:        _log,
	}
}

// Dispatcher returns the session's method router for handler registration.
func (s *Session) Dispatcher() *UberDispatcher {
	return s.dispatcher
}

// Handle registers a typed command function (see NewCommand) under method.
func (s *Session) Handle(method string, fn any) error {
	h, err := NewCommand(fn)
	if err != nil {
		return err
	}
	s.dispatcher.Handle(method, h)
	return nil
}

// DispatchProtocolMessage processes one inbound message. JSON text (sniffed
// by a leading '{') is converted to CBOR at the boundary; CBOR passes through
// untouched. A malformed message produces a well-formed error response when a
// call id could be recovered, and an error notification otherwise — never a
// dropped connection. A message naming an unregistered method falls through
// to the channel's outer router.
func (s *Session) DispatchProtocolMessage(msg []byte) {
	raw := msg
	if len(msg) > 0 && msg[0] == '{' {
		converted, err := cjson.ConvertJSONToCBOR(msg)
		if err != nil {
			s.log.Debug("failed to convert inbound JSON", slog.String("error", err.Error()))
			s.channel.SendProtocolNotification(CreateErrorNotification(ParseError(err.Error())))
			s.channel.FlushProtocolNotifications()
			return
		}
		raw = converted
	}

	d := NewDispatchable(raw)
	if !d.Ok() {
		s.log.Debug("malformed protocol message",
			slog.Int("code", int(d.DispatchError().Code())),
			slog.String("error", d.DispatchError().Message()))
		if d.HasCallID() {
			s.channel.SendProtocolResponse(d.CallID(), CreateErrorResponse(d.CallID(), d.DispatchError()))
		} else {
			s.channel.SendProtocolNotification(CreateErrorNotification(d.DispatchError()))
		}
		s.channel.FlushProtocolNotifications()
		return
	}

	result := s.dispatcher.Dispatch(d)
	if !result.MethodFound() {
		s.log.Debug("method not registered", slog.String("method", string(d.Method())))
		if !d.HasCallID() {
			// no call id to correlate a fall-through response with,
			// so report the miss as an error notification
			s.channel.SendProtocolNotification(CreateErrorNotification(
				MethodNotFound("'" + string(d.Method()) + "' wasn't found")))
			s.channel.FlushProtocolNotifications()
			return
		}
		s.channel.FallThrough(d.CallID(), d.Method(), msg)
		return
	}

	s.log.Debug("dispatching command",
		slog.String("method", string(d.Method())),
		slog.Bool("hasCallId", d.HasCallID()))
	result.Run()
	s.channel.FlushProtocolNotifications()
}
