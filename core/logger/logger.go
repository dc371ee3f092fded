package logger

import (
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Gray   = "\033[90m"
)

var verbose atomic.Bool

// SetVerbose toggles Debug output for every logger in the process.
func SetVerbose(v bool) {
	verbose.Store(v)
}

type Logger struct {
	logger *log.Logger
	mu     sync.Mutex
}

func NewLogger() *Logger {
	return &Logger{
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// SetOutput redirects the logger, mostly useful in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// the prefix lives on the shared log.Logger, so level switch and write happen under one lock
func (l *Logger) println(prefix string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetPrefix(prefix)
	l.logger.Println(v...)
}

func (l *Logger) printf(prefix, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetPrefix(prefix)
	l.logger.Printf(format, v...)
}

func (l *Logger) Info(v ...interface{}) {
	l.println(Blue+"[INFO] "+Reset, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.printf(Blue+"[INFO] "+Reset, format, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.println(Yellow+"[WARN] "+Reset, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.printf(Yellow+"[WARN] "+Reset, format, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.println(Red+"[ERROR] "+Reset, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.printf(Red+"[ERROR] "+Reset, format, v...)
}

func (l *Logger) Success(v ...interface{}) {
	l.println(Green+"[SUCCESS] "+Reset, v...)
}

func (l *Logger) Successf(format string, v ...interface{}) {
	l.printf(Green+"[SUCCESS] "+Reset, format, v...)
}

func (l *Logger) Debug(v ...interface{}) {
	if !verbose.Load() {
		return
	}
	l.println(Gray+"[DEBUG] "+Reset, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if !verbose.Load() {
		return
	}
	l.printf(Gray+"[DEBUG] "+Reset, format, v...)
}
