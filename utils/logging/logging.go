// Package logging configures the process-wide logger. Components log via
// the standard library with a "[component]" prefix; this only decides
// where that output goes.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup routes log output. With an empty path, logs go to stderr only;
// otherwise they tee into a size-rotated file as well.
func Setup(logFile string) {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	if logFile == "" {
		log.SetOutput(os.Stderr)
		return
	}
	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotated))
}
