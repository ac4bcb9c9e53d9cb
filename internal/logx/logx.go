// Package logx 提供统一格式的分级日志输出。
package logx

import (
	"fmt"
	"log"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Log 以 "[LEVEL] module/operation: details" 的格式写入标准日志。
func Log(level, module, operation, details string) {
	log.Printf("[%s] %s/%s: %s", level, module, operation, details)
}

// Info logs an informational message.
func Info(module, operation, format string, args ...any) {
	Log(LevelInfo, module, operation, fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(module, operation, format string, args ...any) {
	Log(LevelWarn, module, operation, fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(module, operation, format string, args ...any) {
	Log(LevelError, module, operation, fmt.Sprintf(format, args...))
}
