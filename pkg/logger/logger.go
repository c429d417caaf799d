package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger
}

// New builds a production JSON logger at info level
func New() *Logger {
	return NewForEnvironment("production")
}

// NewForEnvironment builds a JSON logger writing to stdout. Development
// environments log at debug level.
func NewForEnvironment(environment string) *Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(levelFor(environment))

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{
		SugaredLogger: logger.Sugar(),
	}
}

// Zap returns the structured logger services are built with
func (l *Logger) Zap() *zap.Logger {
	return l.Desugar()
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("request_id", requestID),
	}
}

func levelFor(environment string) zapcore.Level {
	switch environment {
	case "development", "dev", "local":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
