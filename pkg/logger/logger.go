// Package logger builds the zerolog logger shared by the dataorg command and its stores.
//
//	logData, err := logger.New().FromPath("/var/log/dataorg.log").WithLevel("debug").Make()
//	if err != nil { ... }
//	defer logData.Close()
//	logData.Logger.Info().Msg("started")
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

type LogBuild struct {
	writer  io.Writer
	path    string
	level   string
	console bool
}

type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

func New() *LogBuild {
	return &LogBuild{level: zerolog.LevelInfoValue}
}

// FromPath appends to the file at path instead of writing to stderr.
func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithLevel sets the minimum level by name (trace, debug, info, warn, error). An empty
// name keeps the default info level.
func (build *LogBuild) WithLevel(level string) *LogBuild {
	if level != "" {
		build.level = level
	}
	return build
}

// Console switches to human readable output.
func (build *LogBuild) Console(on bool) *LogBuild {
	build.console = on
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	level, err := zerolog.ParseLevel(build.level)
	if err != nil {
		return nil, err
	}

	logData = new(LogData)
	var w io.Writer = os.Stderr
	if build.writer != nil {
		w = build.writer
	}
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		w = zerolog.SyncWriter(logData.LogFile)
	}
	if build.console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: build.path != ""}
	}
	logData.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logData, nil
}

// Close closes the log file, if any.
func (logData *LogData) Close() error {
	if logData.LogFile == nil {
		return nil
	}
	return logData.LogFile.Close()
}
