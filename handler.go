package crdtp

import (
	"errors"
	"reflect"
	"runtime"

	"github.com/fxamacker/cbor/v2"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// NewCommand wraps a plain Go function into a Handler that takes care of
// params deserialization and response construction. Accepted signatures:
//
//	func() error
//	func(P) error
//	func() (R, error)
//	func(P) (R, error)
//
// P is the command's parameter struct, CBOR-decoded from the message's raw
// params span; a decode failure produces an InvalidParams response without
// invoking fn. A non-nil error from fn produces a ServerError response.
// Otherwise R is CBOR-encoded as the result payload of a success response.
// Commands dispatched without a call id report errors as notifications and
// produce no response on success.
func NewCommand(fn any) (Handler, error) {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, errors.New("not a function")
	}

	fnVal := reflect.ValueOf(fn)
	name := runtime.FuncForPC(fnVal.Pointer()).Name()

	if fnType.IsVariadic() {
		return nil, errors.New(`"` + name + `": variadic command functions not supported`)
	}
	if fnType.NumIn() > 1 {
		return nil, errors.New(`"` + name + `": command function takes at most one params argument`)
	}
	if fnType.NumOut() < 1 || fnType.NumOut() > 2 || fnType.Out(fnType.NumOut()-1) != errType {
		return nil, errors.New(`"` + name + `": command function must return error last`)
	}

	var paramsType reflect.Type
	if fnType.NumIn() == 1 {
		paramsType = fnType.In(0)
		if paramsType.Kind() == reflect.Interface {
			return nil, errors.New(`"` + name + `": interface type as params not supported`)
		}
	}
	hasResult := fnType.NumOut() == 2

	h := func(ch FrontendChannel, call *Dispatchable) {
		var ins []reflect.Value
		if paramsType != nil {
			argV := reflect.New(paramsType)
			if raw := call.Params(); raw != nil {
				if err := cbor.Unmarshal(raw, argV.Interface()); err != nil {
					reportError(ch, call, InvalidParams(err.Error()))
					return
				}
			}
			ins = append(ins, argV.Elem())
		}

		out := fnVal.Call(ins)
		if errV := out[len(out)-1]; !errV.IsNil() {
			reportError(ch, call, ServerError(errV.Interface().(error).Error()))
			return
		}
		if !call.HasCallID() {
			return
		}

		var result Serializable
		if hasResult {
			enc, err := cbor.Marshal(out[0].Interface())
			if err != nil {
				reportError(ch, call, ServerError("marshal result: "+err.Error()))
				return
			}
			result = RawMessage(enc)
		}
		ch.SendProtocolResponse(call.CallID(), CreateResponse(call.CallID(), result))
	}
	return h, nil
}

// reportError sends resp correlated with the call id when one exists, and as
// an error notification otherwise, so the client learns something went wrong
// either way.
func reportError(ch FrontendChannel, call *Dispatchable, resp DispatchResponse) {
	if call.HasCallID() {
		ch.SendProtocolResponse(call.CallID(), CreateErrorResponse(call.CallID(), resp))
		return
	}
	ch.SendProtocolNotification(CreateErrorNotification(resp))
}
