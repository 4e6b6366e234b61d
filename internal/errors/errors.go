package errors

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound             = errors.New("order not found")
	ErrDuplicateIdentifier       = errors.New("duplicate order identifier")
	ErrExhaustedIdentifierSpace  = errors.New("identifier space exhausted")
	ErrStorageFailure            = errors.New("storage failure")
	ErrStorageTimeout            = errors.New("storage timeout")
	ErrGateway                   = errors.New("payment gateway error")
	ErrGatewayTimeout            = errors.New("payment gateway timeout")
	ErrPaymentNotCompleted       = errors.New("payment not completed")
	ErrInvalidSignature          = errors.New("invalid webhook signature")
	ErrUnsupportedWebhookPayload = errors.New("unsupported webhook payload")
	ErrUnsupportedPayMethod      = errors.New("unsupported pay method")
)

// GatewayError описывает неуспешный ответ платежного шлюза. Сравнивается с ErrGateway
// через errors.Is.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway responded with status code %d: %s", e.StatusCode, e.Body)
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}
