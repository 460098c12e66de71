package core

import (
	"fmt"

	"modemconn/config"
	"modemconn/internal/metrics"
	"modemconn/internal/stack"
	"modemconn/util"
)

// hostStack is replaced in tests.
var hostStack = stack.Host //nolint:gochecknoglobals

// Build constructs the Mode for cfg on the platform's socket stack.
// cfg must already be validated.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	st, err := hostStack()
	if err != nil {
		return nil, fmt.Errorf("socket stack: %w", err)
	}
	return BuildWith(cfg, st, logger, m), nil
}

// BuildWith constructs the Mode for cfg on st.
func BuildWith(cfg *config.Config, st stack.Stack, logger *util.Logger, m *metrics.Collector) Mode {
	return &ConnectMode{
		Stack:   st,
		Host:    cfg.Host,
		Port:    uint16(cfg.Port),
		Timeout: util.SecondsCeil(cfg.ConnectTimeout()),
		Logger:  logger,
		Metrics: m,
	}
}
