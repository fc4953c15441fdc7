package kafka

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// LoadEnv заполняет cfg из переменных окружения по env-тегам (caarlos0/env/v10)
// и проверяет, что при включённой публикации заданы брокеры и топик.
func LoadEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse kafka env: %w", err)
	}
	if !cfg.Enabled {
		return nil
	}
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if cfg.PurchaseTopic == "" {
		return fmt.Errorf("KAFKA_PURCHASE_TOPIC is required when KAFKA_ENABLED=true")
	}
	return nil
}
