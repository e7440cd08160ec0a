package bot

import (
	"context"
	"sync"
)

// responderCall records one call made through a recordingResponder.
type responderCall struct {
	Method    string // "Defer" or "Send"
	Ephemeral bool
	Reply     Reply
}

// recordingResponder implements Responder by recording calls for assertions.
type recordingResponder struct {
	mu    sync.Mutex
	calls []responderCall

	// DeferError and SendError are returned by every matching call when set.
	DeferError error
	SendError  error
}

func (responder *recordingResponder) Defer(_ context.Context, ephemeral bool) error {
	responder.mu.Lock()
	defer responder.mu.Unlock()
	responder.calls = append(responder.calls, responderCall{Method: "Defer", Ephemeral: ephemeral})
	return responder.DeferError
}

func (responder *recordingResponder) Send(_ context.Context, reply Reply) error {
	responder.mu.Lock()
	defer responder.mu.Unlock()
	responder.calls = append(responder.calls, responderCall{Method: "Send", Ephemeral: reply.Ephemeral, Reply: reply})
	return responder.SendError
}

func (responder *recordingResponder) Calls() []responderCall {
	responder.mu.Lock()
	defer responder.mu.Unlock()
	return append([]responderCall(nil), responder.calls...)
}

func (responder *recordingResponder) Sends() []Reply {
	var replies []Reply
	for _, call := range responder.Calls() {
		if call.Method == "Send" {
			replies = append(replies, call.Reply)
		}
	}
	return replies
}
