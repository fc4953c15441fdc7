package sellauth

import (
	"errors"
	"fmt"
)

// ErrGateway: любая ошибка ответа SellAuth: не-2xx статус или нечитаемое тело
var ErrGateway = errors.New("sellauth gateway error")

// GatewayError детали ошибки SellAuth
type GatewayError struct {
	Op         string
	StatusCode int
	// Body: начало тела ответа для диагностики, покупателю не показывается
	Body string
	Err  error
}

func (e *GatewayError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("sellauth %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("sellauth %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("sellauth %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("sellauth %s failed", e.Op)
	}
}

// Is делает errors.Is(err, ErrGateway) истинным для любого GatewayError
func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
