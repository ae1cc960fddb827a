package crdtp

// fakeChannel records everything emitted through it for inspection by tests.
type fakeChannel struct {
	responses     []fakeResponse
	notifications []Serializable
	fallThroughs  []fakeFallThrough
	flushes       int
}

type fakeResponse struct {
	callID  int32
	message Serializable
}

type fakeFallThrough struct {
	callID  int32
	method  string
	message []byte
}

func (f *fakeChannel) SendProtocolResponse(callID int32, message Serializable) {
	f.responses = append(f.responses, fakeResponse{callID: callID, message: message})
}

func (f *fakeChannel) SendProtocolNotification(message Serializable) {
	f.notifications = append(f.notifications, message)
}

func (f *fakeChannel) FallThrough(callID int32, method []byte, message []byte) {
	f.fallThroughs = append(f.fallThroughs, fakeFallThrough{
		callID:  callID,
		method:  string(method),
		message: message,
	})
}

func (f *fakeChannel) FlushProtocolNotifications() {
	f.flushes++
}
