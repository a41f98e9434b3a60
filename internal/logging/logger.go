// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupParams selects level, format and destination of the logs.
type SetupParams struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	MaxSizeMB     int
	MaxBackups    int
}

// Setup applies params to the standard logrus logger.
func Setup(params SetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))
	logrus.SetOutput(Output(params))
}

// Output builds the writer described by params.
func Output(params SetupParams) io.Writer {
	if params.LogFileName == "" {
		return os.Stdout
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	maxSize := params.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}
	rotating := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    maxSize, // megabytes
		MaxBackups: params.MaxBackups,
		LocalTime:  false,
		Compress:   true,
	}

	if params.LogToStdout {
		return NewCombinedWriter(os.Stdout, rotating)
	}
	return rotating
}

// GetLevel maps a level name to a logrus level, defaulting to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
