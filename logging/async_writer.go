package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// AsyncWriter 异步日志写入器
type AsyncWriter struct {
	writer     io.Writer
	formatter  Formatter
	entryCh    chan *LogEntry
	wg         sync.WaitGroup
	closeOnce  sync.Once
	closed     chan struct{}
	errHandler atomic.Pointer[func(error)]
	mu         sync.RWMutex
}

// NewAsyncWriter 创建新的异步写入器
func NewAsyncWriter(writer io.Writer, formatter Formatter, bufferSize int) *AsyncWriter {
	w := &AsyncWriter{
		writer:    writer,
		formatter: formatter,
		entryCh:   make(chan *LogEntry, bufferSize),
		closed:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.process()

	return w
}

// WriteLog 写入日志条目
// 队列满时阻塞直到有空间，保证不丢日志；关闭后写入被丢弃
func (w *AsyncWriter) WriteLog(entry *LogEntry) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	select {
	case <-w.closed:
		return
	default:
	}
	w.entryCh <- entry
}

// Close 关闭写入器并等待队列中的日志全部写出
func (w *AsyncWriter) Close() error {
	w.closeOnce.Do(func() {
		// 写锁保证没有 WriteLog 正在向已关闭的通道发送
		w.mu.Lock()
		close(w.closed)
		close(w.entryCh)
		w.mu.Unlock()
	})
	w.wg.Wait()
	return nil
}

func (w *AsyncWriter) process() {
	defer w.wg.Done()

	for entry := range w.entryCh {
		data, err := w.formatter.Format(entry)
		if err != nil {
			w.report(fmt.Errorf("AsyncWriter format error: %w", err))
			continue
		}

		if _, err := w.writer.Write(withNewline(data)); err != nil {
			w.report(fmt.Errorf("AsyncWriter write error: %w", err))
		}
	}
}

func (w *AsyncWriter) report(err error) {
	if h := w.errHandler.Load(); h != nil {
		(*h)(err)
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// SetErrorHandler 设置格式化或写入失败时的处理函数，nil 恢复为写 stderr
// 处理函数在写入协程中调用
func (w *AsyncWriter) SetErrorHandler(handler func(error)) {
	if handler == nil {
		w.errHandler.Store(nil)
		return
	}
	w.errHandler.Store(&handler)
}
