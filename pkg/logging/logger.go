package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Local development gets the human-readable
// console encoder; every other environment logs structured JSON.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "local" || env == "test" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
