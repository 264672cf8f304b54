package logger

import "go.uber.org/zap"

// New builds the process logger. Debug mode switches to the human-readable
// development encoder with debug-level output.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return config.Build()
}
