package config

import (
	"fmt"

	"go.uber.org/zap"
)

// Build constructs the process logger.
func (l LogConfig) Build() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	if l.Level != "" {
		level, err := zap.ParseAtomicLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		cfg.Level = level
	}
	return cfg.Build()
}
