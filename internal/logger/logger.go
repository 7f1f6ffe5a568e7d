package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDir        = "logs"
	defaultFilename   = "app.log"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 7
	defaultMaxAgeDays = 30
)

// Options 日志滚动文件配置，零值字段使用默认值
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var global atomic.Pointer[zap.Logger]

// Init 按运行模式初始化全局日志并替换 zap 全局实例
func Init(mode string, options Options) *zap.Logger {
	l := New(mode, options)
	global.Store(l)
	zap.ReplaceGlobals(l)
	return l
}

// New 创建日志实例
//
// debug 模式以可读格式输出到 stdout；其他模式写 JSON 滚动文件，warn 及以上同时输出到 stderr。
func New(mode string, options Options) *zap.Logger {
	encoding := encoderConfig()
	if strings.EqualFold(strings.TrimSpace(mode), "debug") {
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoding), zapcore.Lock(os.Stdout), zapcore.DebugLevel)
		return wrap(core)
	}

	stderr := zapcore.NewCore(zapcore.NewJSONEncoder(encoding), zapcore.Lock(os.Stderr), zapcore.WarnLevel)
	file, err := rollingFile(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file unavailable, writing to stdout: %v\n", err)
		return wrap(zapcore.NewCore(zapcore.NewJSONEncoder(encoding), zapcore.Lock(os.Stdout), zapcore.InfoLevel))
	}
	return wrap(zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoding), file, zapcore.InfoLevel),
		stderr,
	))
}

// Z 当前全局日志；未初始化时返回输出到 stdout 的默认实例
func Z() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l := wrap(zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), zapcore.InfoLevel))
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

// S 全局 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// StdLogger 适配标准库 log 的输出
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// WithRequestID 绑定 request_id；空值时返回全局实例
func WithRequestID(requestID string) *zap.SugaredLogger {
	if requestID = strings.TrimSpace(requestID); requestID != "" {
		return S().With("request_id", requestID)
	}
	return S()
}

// Debugw 输出 debug 级别日志
func Debugw(message string, kv ...interface{}) { S().Debugw(message, kv...) }

// Infow 输出 info 级别日志
func Infow(message string, kv ...interface{}) { S().Infow(message, kv...) }

// Warnw 输出 warn 级别日志
func Warnw(message string, kv ...interface{}) { S().Warnw(message, kv...) }

// Errorw 输出 error 级别日志
func Errorw(message string, kv ...interface{}) { S().Errorw(message, kv...) }

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func wrap(core zapcore.Core) *zap.Logger {
	// 包级 Infow 等函数多一层调用栈
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func rollingFile(options Options) (zapcore.WriteSyncer, error) {
	filename, err := logFilePath(options)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    orDefault(options.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(options.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(options.MaxAgeDays, defaultMaxAgeDays),
		Compress:   options.Compress,
	}), nil
}

// logFilePath 解析日志文件路径并确认可写
func logFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		dir = defaultDir
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve log dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaultFilename
	}
	full := filepath.Join(dir, name)
	f, err := os.OpenFile(full, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	return full, f.Close()
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
