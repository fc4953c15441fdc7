package kafka

// Config содержит конфигурацию публикации событий покупок в Kafka
type Config struct {
	// Enabled — публиковать ли события; при false используется no-op publisher
	Enabled bool `env:"KAFKA_ENABLED" envDefault:"false"`
	// Brokers — список брокеров через запятую:
	//   - локально (go run): localhost:19092
	//   - в Docker: kafka:9092
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:19092"`
	// PurchaseTopic — топик для purchase.created / purchase.completed
	PurchaseTopic string `env:"KAFKA_PURCHASE_TOPIC" envDefault:"shop.purchase.events"`
}

// DefaultConfig возвращает конфигурацию для локальной разработки
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		Brokers:       []string{"localhost:19092"},
		PurchaseTopic: "shop.purchase.events",
	}
}
