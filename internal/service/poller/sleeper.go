package poller

import (
	"context"
	"time"
)

// Sleeper определяет интерфейс для задержки между проверками (подменяется в тестах)
type Sleeper interface {
	// Sleep выполняет задержку на указанное время или до отмены контекста
	Sleep(ctx context.Context, d time.Duration) error
}

// DefaultSleeper реализует Sleeper используя таймер
type DefaultSleeper struct{}

// Sleep ждёт d или отмены ctx
func (s DefaultSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
