package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 7
)

var logger = log.New(newWriter(), "", log.Ldate|log.Ltime|log.Lmicroseconds)

// newWriter rotates through lumberjack when LOGFILE is set, otherwise logs go to stderr
func newWriter() io.Writer {
	logFile := os.Getenv("LOGFILE")
	if logFile == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename: "./logs/" + logFile,
		MaxSize:  envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB), // megabytes
		MaxAge:   envInt("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDays),
	}
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// SetOutput redirects all log output, tests use it to silence or capture logs
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Info(category string, content ...interface{}) {
	write(ColorGreen, "INFO", category, content...)
}

func Error(category string, content ...interface{}) {
	write(ColorRed, "ERROR", category, content...)
}

func Warn(category string, content ...interface{}) {
	write(ColorYellow, "WARN", category, content...)
}

func Debug(category string, content ...interface{}) {
	write(ColorBlue, "DEBUG", category, content...)
}

func write(color, level, category string, content ...interface{}) {
	message := fmt.Sprintln(content...)
	message = message[:len(message)-1]
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	logger.Printf("%s: %s", coloredCategory, message)
}

// Errorf logs an error message and returns a formatted error
func Errorf(category string, format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error(category, err.Error())
	return err
}
