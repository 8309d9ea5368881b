package contract

import (
	"errors"
	"fmt"
)

var (
	ErrGateway       = errors.New("gateway call failed")
	ErrMalformedItem = errors.New("menu item record is malformed")
	ErrInvalidIntent = errors.New("intent not allowed in current state")
	ErrValidation    = errors.New("validation failed")
)

// GatewayError reports a failed round-trip to one of the remote services.
// errors.Is(err, ErrGateway) holds for every GatewayError.
type GatewayError struct {
	Gateway    GatewayName
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s gateway: status=%d: %v", e.Gateway, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s gateway: %v", e.Gateway, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}

func NewGatewayError(gateway GatewayName, status int, err error) *GatewayError {
	return &GatewayError{Gateway: gateway, StatusCode: status, Err: err}
}
