package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output
// on standard error. Levels are colored when standard error is a terminal.
// The level can be raised or lowered after construction, e.g. by a --verbose flag.
func NewApplicationLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = level
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Sampling = nil
	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeLevel = levelEncoder(term.IsTerminal(int(os.Stderr.Fd())))
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}

func levelEncoder(colored bool) zapcore.LevelEncoder {
	if colored {
		return zapcore.CapitalColorLevelEncoder
	}
	return zapcore.CapitalLevelEncoder
}
