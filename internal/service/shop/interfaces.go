package shop

import (
	"github.com/Vinayak2101/Telegram-SellAuth-Shop/internal/service/poller"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ConfirmationPoller --dir=. --output=./mocks --outpkg=mocks

// ConfirmationPoller запускает ожидание подтверждения оплаты
type ConfirmationPoller interface {
	// Start возвращает false, если задача для txid уже идёт
	Start(job poller.Job) bool
}
