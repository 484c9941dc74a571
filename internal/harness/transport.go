package harness

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
)

// Transport executes one logical operation against one surface.
type Transport interface {
	Name() string
	// Do returns an error only when the call could not be made or its
	// response could not be read; business failures are Responses.
	Do(ctx context.Context, call Call) (*Response, error)
}

// Call is a resolved step: variables are already substituted.
type Call struct {
	Op    Op
	Args  map[string]any
	Token string
	// Revert undoes namespacing in response strings; nil leaves them as is.
	Revert func(string) string
}

// Response is the normalized result of a Call.
type Response struct {
	Outcome Outcome
	Native  string
	Message string
	// Body is the normalized record; nil unless Outcome is Success.
	Body any
	// Envelope is the code of the Status message an RPC response carries,
	// 0 when there is none.
	Envelope int
}

// NewRESTResponse classifies an HTTP status.
func NewRESTResponse(status int, body any, message string) *Response {
	return &Response{
		Outcome: outcomeFromHTTP(status),
		Native:  strconv.Itoa(status),
		Message: message,
		Body:    body,
	}
}

// NewRPCResponse classifies a gRPC status code.
func NewRPCResponse(code codes.Code, noContent bool, body any, message string) *Response {
	return &Response{
		Outcome: outcomeFromCode(code, noContent),
		Native:  code.String(),
		Message: message,
		Body:    body,
	}
}
