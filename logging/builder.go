package logging

import (
	"io"
	"os"
	"sync"
)

// LoggingBuilder 日志构建器
type LoggingBuilder struct {
	providers    []LoggerProvider
	minimumLevel LogLevel
	mu           sync.Mutex
}

// NewLoggingBuilder 创建日志构建器，默认级别 Info
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{minimumLevel: LogLevelInfo}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimumLevel = level
	return b
}

// AddProvider 添加日志提供者
func (b *LoggingBuilder) AddProvider(provider LoggerProvider) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = append(b.providers, provider)
	return b
}

// AddConsole 添加控制台日志，默认写 stderr
// stdout 留给被托管的 .NET 应用
func (b *LoggingBuilder) AddConsole(options ...ConsoleLoggerOptions) *LoggingBuilder {
	opts := ConsoleLoggerOptions{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
		ColorOutput:      true,
		Output:           os.Stderr,
	}
	if len(options) > 0 {
		opts = options[0]
	}
	return b.AddProvider(NewConsoleLoggerProvider(opts))
}

// AddFile 添加文件日志
func (b *LoggingBuilder) AddFile(path string, options ...FileLoggerOptions) *LoggingBuilder {
	opts := FileLoggerOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	opts.Path = path
	return b.AddProvider(NewFileLoggerProvider(opts))
}

// Configure 按 Settings 设置级别并添加控制台（以及可选的文件）输出
func (b *LoggingBuilder) Configure(s Settings, out io.Writer) error {
	level, err := ParseLevel(s.Level)
	if err != nil {
		return err
	}
	format, err := ParseFormat(s.Format)
	if err != nil {
		return err
	}
	asJSON := format == FormatJSON

	if out == nil {
		out = os.Stderr
	}
	color := !asJSON
	if s.Color != nil {
		color = *s.Color
	}

	b.SetMinimumLevel(level)
	b.AddConsole(ConsoleLoggerOptions{
		IncludeTimestamp: true,
		TimestampFormat:  "2006-01-02 15:04:05",
		ColorOutput:      color,
		JSON:             asJSON,
		Output:           out,
	})
	if s.File != "" {
		b.AddFile(s.File, FileLoggerOptions{JSON: asJSON})
	}
	return nil
}

// Build 构建日志工厂
func (b *LoggingBuilder) Build() LoggerFactory {
	b.mu.Lock()
	defer b.mu.Unlock()

	return &loggerFactory{
		providers:    append([]LoggerProvider(nil), b.providers...),
		minimumLevel: b.minimumLevel,
	}
}
