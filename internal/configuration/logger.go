package configuration

import "go.uber.org/zap"

func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
