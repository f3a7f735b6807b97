package ai

import "fmt"

// GatewayError is returned for any failure talking to the model or reading
// its reply.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
