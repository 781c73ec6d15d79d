// Package handler adapts typed request handlers to raw packet functions.
// The shape is extract, estimate, build: a handler first pulls its typed
// data out of the request, then names how large a response buffer it needs,
// then renders into the buffer it is given. The package is
// transport-agnostic; codes follow the usual class.detail encoding.
package handler

import "ember/emberos/mutex"

// Code is a response class.detail code in a single byte: the class in the
// top three bits, the detail below.
type Code uint8

const (
	CodeContent            Code = 0x45 // 2.05
	CodeBadRequest         Code = 0x80 // 4.00
	CodeNotFound           Code = 0x84 // 4.04
	CodeInternalError      Code = 0xA0 // 5.00
	CodeServiceUnavailable Code = 0xA3 // 5.03
)

// Request is a raw inbound packet.
type Request struct {
	Path    string
	Payload []byte
}

// Response is a raw outbound packet.
type Response struct {
	Code    Code
	Payload []byte
}

// Handler produces responses from typed request data D.
type Handler[D any] interface {
	// ExtractRequest pulls the typed data out of the raw request. An
	// error turns into a 4.00 response.
	ExtractRequest(Request) (D, error)

	// EstimateLength names an upper bound on the response payload for
	// this request data.
	EstimateLength(D) int

	// BuildResponse renders the response into buf and returns the code
	// and the number of payload bytes written.
	BuildResponse(D, []byte) (Code, int, error)
}

// Func is a raw packet handler.
type Func func(Request) Response

// Adapt turns a typed handler into a raw packet function.
func Adapt[D any](h Handler[D]) Func {
	return func(req Request) Response {
		d, err := h.ExtractRequest(req)
		if err != nil {
			return Response{Code: CodeBadRequest}
		}
		buf := make([]byte, h.EstimateLength(d))
		code, n, err := h.BuildResponse(d, buf)
		if err != nil {
			return Response{Code: CodeInternalError}
		}
		if n > len(buf) {
			n = len(buf)
		}
		return Response{Code: code, Payload: buf[:n]}
	}
}

// Guarded serializes access to a raw handler with a try-lock: a request
// arriving while another is in flight is answered 5.03 instead of parking
// the server thread behind user code.
type Guarded struct {
	mu mutex.Mutex
	fn Func
}

// Guard wraps fn.
func Guard(fn Func) *Guarded {
	return &Guarded{fn: fn}
}

// Handle serves one request, or reports service-unavailable when busy.
func (g *Guarded) Handle(req Request) Response {
	if !g.mu.TryLock() {
		return Response{Code: CodeServiceUnavailable}
	}
	defer g.mu.Unlock()
	return g.fn(req)
}
