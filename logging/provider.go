package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// ConsoleLoggerOptions 控制台日志选项
type ConsoleLoggerOptions struct {
	IncludeTimestamp bool
	TimestampFormat  string
	ColorOutput      bool
	// JSON 为 true 时输出 JSON 行，忽略颜色选项
	JSON   bool
	Output io.Writer
}

// ConsoleLoggerProvider 控制台日志提供者（同步写入）
type ConsoleLoggerProvider struct {
	formatter Formatter
	output    io.Writer
	mu        sync.Mutex
}

// NewConsoleLoggerProvider 创建控制台日志提供者
func NewConsoleLoggerProvider(options ConsoleLoggerOptions) *ConsoleLoggerProvider {
	if options.Output == nil {
		options.Output = os.Stdout
	}

	var formatter Formatter
	if options.JSON {
		formatter = NewJsonFormatter()
	} else {
		text := NewTextFormatter()
		text.IncludeTimestamp = options.IncludeTimestamp
		text.ColorOutput = options.ColorOutput
		if options.TimestampFormat != "" {
			text.TimestampFormat = options.TimestampFormat
		}
		formatter = text
	}

	return &ConsoleLoggerProvider{
		formatter: formatter,
		output:    options.Output,
	}
}

// WriteLog 格式化并立即写出
func (p *ConsoleLoggerProvider) WriteLog(entry *LogEntry) {
	data, err := p.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console logger format error: %v\n", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.output.Write(withNewline(data))
}

// Close 控制台不持有资源
func (p *ConsoleLoggerProvider) Close() error {
	return nil
}

// FileLoggerOptions 文件日志选项
type FileLoggerOptions struct {
	Path string
	// JSON 为 true 时写 JSON 行，否则写文本（无颜色）
	JSON bool
	// BufferSize 异步写入队列长度，默认 1024
	BufferSize int
	// ErrorOutput 打开或写入失败时的报告目标，默认 stderr
	ErrorOutput io.Writer
}

// FileLoggerProvider 文件日志提供者
// 文件在第一条日志到达时才打开，写入通过 AsyncWriter 异步完成
type FileLoggerProvider struct {
	options FileLoggerOptions
	file    *os.File
	writer  *AsyncWriter
	failed  bool
	closed  bool
	// reported 写入错误只报告第一次
	reported atomic.Bool
	mu       sync.Mutex
}

// NewFileLoggerProvider 创建文件日志提供者
func NewFileLoggerProvider(options FileLoggerOptions) *FileLoggerProvider {
	if options.BufferSize <= 0 {
		options.BufferSize = 1024
	}
	if options.ErrorOutput == nil {
		options.ErrorOutput = os.Stderr
	}
	return &FileLoggerProvider{options: options}
}

// WriteLog 投递到异步写入器；Close 之后的日志被丢弃
func (p *FileLoggerProvider) WriteLog(entry *LogEntry) {
	w := p.ensureWriter()
	if w == nil {
		return
	}
	w.WriteLog(entry)
}

func (p *FileLoggerProvider) ensureWriter() *AsyncWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	if p.writer != nil || p.failed {
		return p.writer
	}

	file, err := os.OpenFile(p.options.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// 只报告一次，之后的日志直接丢弃
		fmt.Fprintf(p.options.ErrorOutput, "Failed to open log file: %v\n", err)
		p.failed = true
		return nil
	}

	var formatter Formatter = NewTextFormatter()
	if p.options.JSON {
		formatter = NewJsonFormatter()
	}

	p.file = file
	p.writer = NewAsyncWriter(file, formatter, p.options.BufferSize)
	p.writer.SetErrorHandler(p.reportWriteError)
	return p.writer
}

// Close 刷新队列并关闭文件
func (p *FileLoggerProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.writer == nil {
		return nil
	}
	p.writer.Close()
	p.writer = nil

	err := p.file.Close()
	p.file = nil
	return err
}

func (p *FileLoggerProvider) reportWriteError(err error) {
	if p.reported.CompareAndSwap(false, true) {
		fmt.Fprintf(p.options.ErrorOutput, "Failed to write log file %s: %v\n", p.options.Path, err)
	}
}

func withNewline(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return data
	}
	return append(data, '\n')
}
