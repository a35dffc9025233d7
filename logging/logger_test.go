package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormatter(t *testing.T) {
	f := NewTextFormatter()
	f.ColorOutput = false
	entry := &LogEntry{
		Time:     time.Now(),
		Level:    LogLevelInfo,
		Category: "Host",
		Message:  "Runtime initialized successfully",
		Fields:   []Field{{Key: "assembly", Value: "app.dll"}},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	str := string(out)
	assert.Contains(t, str, "INFO")
	assert.Contains(t, str, "[Host]")
	assert.Contains(t, str, "Runtime initialized successfully")
	assert.Contains(t, str, "assembly=app.dll")
	assert.True(t, strings.HasSuffix(str, "\n"))
}

func TestJsonFormatter(t *testing.T) {
	f := NewJsonFormatter()
	entry := &LogEntry{
		Time:     time.Now(),
		Level:    LogLevelError,
		Category: "hostfxr",
		Message:  "load failed",
		Fields: []Field{
			{Key: "path", Value: "/usr/share/dotnet"},
			{Key: "cause", Value: errors.New("boom")},
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(out, &data))

	assert.Equal(t, "ERROR", data["level"])
	assert.Equal(t, "hostfxr", data["category"])
	fields, ok := data["fields"].(map[string]any)
	require.True(t, ok, "Expected fields map")
	assert.Equal(t, "/usr/share/dotnet", fields["path"])
	assert.Equal(t, "boom", fields["cause"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":        LogLevelInfo,
		"trace":   LogLevelTrace,
		"DEBUG":   LogLevelDebug,
		" warn ":  LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"Fatal":   LogLevelFatal,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestFactoryMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	factory := NewLoggingBuilder().
		SetMinimumLevel(LogLevelWarn).
		AddConsole(ConsoleLoggerOptions{Output: &buf}).
		Build()

	logger := factory.CreateLogger("test")
	logger.Info("hidden")
	logger.Warn("shown")

	// 对已创建的 Logger 同样生效
	factory.SetMinimumLevel(LogLevelDebug)
	logger.Debug("now visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "now visible")
}

func TestWithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	factory := NewLoggingBuilder().
		AddConsole(ConsoleLoggerOptions{Output: &buf}).
		Build()

	base := factory.CreateLogger("test").WithFields(Field{Key: "a", Value: 1})
	left := base.WithFields(Field{Key: "b", Value: 2})
	right := base.WithFields(Field{Key: "c", Value: 3})

	left.Info("left")
	right.Info("right")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a=1, b=2")
	assert.NotContains(t, lines[1], "b=2")
	assert.Contains(t, lines[1], "a=1, c=3")
}

func TestWithCategory(t *testing.T) {
	var buf bytes.Buffer
	factory := NewLoggingBuilder().
		AddConsole(ConsoleLoggerOptions{Output: &buf}).
		Build()

	factory.CreateLogger("Host").WithCategory("hostfxr").Info("hello")
	assert.Contains(t, buf.String(), "[hostfxr] hello")
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nethost.log")
	factory := NewLoggingBuilder().AddFile(path, FileLoggerOptions{JSON: true}).Build()

	logger := factory.CreateLogger("Host")
	logger.Info("one")
	logger.Info("two")
	require.NoError(t, factory.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "one", first["msg"])
}

func TestNewFactory(t *testing.T) {
	var buf bytes.Buffer
	factory, err := NewFactory(Settings{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	factory.CreateLogger("Host").Debug("json line")
	var data map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "json line", data["msg"])

	_, err = NewFactory(Settings{Format: "xml"}, &buf)
	assert.Error(t, err)
	_, err = NewFactory(Settings{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestAsyncWriter(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex

	writer := &syncWriter{buf: &buf, mu: &mu}

	asyncWriter := NewAsyncWriter(writer, NewTextFormatter(), 10)

	entry := &LogEntry{
		Time:    time.Now(),
		Level:   LogLevelInfo,
		Message: "Async",
	}

	for i := 0; i < 5; i++ {
		asyncWriter.WriteLog(entry)
	}

	// 关闭以刷新
	asyncWriter.Close()
	// 关闭后的写入被丢弃而不是 panic
	asyncWriter.WriteLog(entry)

	lines := strings.Split(strings.TrimSpace(writer.String()), "\n")
	assert.Len(t, lines, 5)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestAsyncWriterErrorHandler(t *testing.T) {
	w := NewAsyncWriter(failingWriter{}, NewTextFormatter(), 4)

	var (
		mu   sync.Mutex
		errs []error
	)
	w.SetErrorHandler(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	w.WriteLog(&LogEntry{Time: time.Now(), Level: LogLevelInfo, Message: "lost"})
	w.WriteLog(&LogEntry{Time: time.Now(), Level: LogLevelInfo, Message: "lost"})
	require.NoError(t, w.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 2)
	assert.ErrorContains(t, errs[0], "disk full")
}

func TestFileProviderReportsWriteErrorOnce(t *testing.T) {
	var report bytes.Buffer
	path := filepath.Join(t.TempDir(), "nethost.log")
	p := NewFileLoggerProvider(FileLoggerOptions{Path: path, ErrorOutput: &report})

	entry := &LogEntry{Time: time.Now(), Level: LogLevelInfo, Message: "one"}
	p.WriteLog(entry)
	// 底层文件失效后写入全部失败
	p.mu.Lock()
	require.NoError(t, p.file.Close())
	p.mu.Unlock()
	p.WriteLog(entry)
	p.WriteLog(entry)
	_ = p.Close()

	assert.Equal(t, 1, strings.Count(report.String(), "Failed to write log file "+path))
}

func TestFileProviderDropsLogsAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nethost.log")
	p := NewFileLoggerProvider(FileLoggerOptions{Path: path})

	p.WriteLog(&LogEntry{Time: time.Now(), Level: LogLevelInfo, Message: "before"})
	require.NoError(t, p.Close())
	p.WriteLog(&LogEntry{Time: time.Now(), Level: LogLevelInfo, Message: "after"})
	require.NoError(t, p.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before")
	assert.NotContains(t, string(data), "after")

	// 从未写过日志的 provider 关闭后也不再创建文件
	untouched := filepath.Join(t.TempDir(), "never.log")
	q := NewFileLoggerProvider(FileLoggerOptions{Path: untouched})
	require.NoError(t, q.Close())
	q.WriteLog(&LogEntry{Time: time.Now(), Level: LogLevelInfo, Message: "after"})
	assert.NoFileExists(t, untouched)
}

type syncWriter struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (w *syncWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func BenchmarkAsyncLogging(b *testing.B) {
	asyncWriter := NewAsyncWriter(io.Discard, NewTextFormatter(), 10000)
	defer asyncWriter.Close()

	entry := &LogEntry{
		Time:    time.Now(),
		Level:   LogLevelInfo,
		Message: "Benchmark",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		asyncWriter.WriteLog(entry)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestBufferPoolDropsLargeBuffers(t *testing.T) {
	pool := NewBufferPool()
	b := pool.Get()
	b.Write(make([]byte, maxPooledBuffer+1))
	pool.Put(b)

	assert.Zero(t, pool.Get().Len())
}
