package server

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；未初始化时为 no-op，测试无需配置
var Log = zap.NewNop().Sugar()

// LogOptions 日志输出配置
type LogOptions struct {
	FilePath string // 为空时输出到 stderr
	Verbose  bool   // true 时开启 Debug 级别
}

// InitLogger 初始化 zap 日志；指定文件时通过 lumberjack 滚动写入
func InitLogger(opts LogOptions) error {
	var ws zapcore.WriteSyncer
	if opts.FilePath != "" {
		// 文件滚动策略：10MB 每文件，保留3个备份，7天过期
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   false,
		})
	} else {
		ws = zapcore.Lock(os.Stderr)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, level)

	Log = zap.New(core, zap.AddCaller()).Named("presence").Sugar()
	return nil
}

// SyncLogger 清理和同步缓冲
func SyncLogger() error {
	if Log == nil {
		return nil
	}
	return Log.Sync()
}
