package shop

import (
	"errors"
	"fmt"
)

// ErrValidation: кнопка ссылается на неизвестный товар, вариант или способ оплаты
var ErrValidation = errors.New("validation error")

// ValidationError что именно не найдено
type ValidationError struct {
	// What: "Product", "Variant" или "Payment method"; попадает в текст покупателю
	What string
	Key  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Key)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
