package telegram

import (
	"errors"
	"fmt"
)

// ErrTransport: сообщение не доставлено. Логируется вызывающим и не ретраится.
var ErrTransport = errors.New("telegram transport error")

// APIError ошибка, которую вернул Bot API или сеть
type APIError struct {
	Method      string
	StatusCode  int
	Description string
	Err         error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("telegram %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("telegram %s: status %d: %s", e.Method, e.StatusCode, e.Description)
}

func (e *APIError) Is(target error) bool {
	return target == ErrTransport
}

func (e *APIError) Unwrap() error {
	return e.Err
}
