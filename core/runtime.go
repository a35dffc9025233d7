package core

import (
	"sync"

	"github.com/gocrud/nethost/logging"
)

// Runtime 是框架的状态容器
type Runtime struct {
	// Features 存放构建时特性（配置、设置等）
	Features FeatureCollection

	// Lifecycle 生命周期管理
	Lifecycle *LifecycleEvents

	// Logger 运行时日志，默认丢弃
	Logger logging.Logger

	// shutdownCh 用于通知应用退出
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	// exitErr 记录触发退出的第一个错误
	exitErr error
	mu      sync.Mutex

	// ErrorHandler 用于记录运行时产生的严重错误
	// 外部可以通过设置此字段来接管错误日志
	ErrorHandler func(err error)
}

// NewRuntime 创建一个新的运行时实例
func NewRuntime() *Runtime {
	rt := &Runtime{
		Lifecycle:  NewLifecycle(),
		Logger:     logging.Nop(),
		shutdownCh: make(chan struct{}),
	}
	rt.ErrorHandler = func(err error) {
		rt.Logger.Error("Runtime error", logging.Err(err))
	}
	return rt
}

// Shutdown 请求应用退出
// 可重复调用，只有第一次生效
func (rt *Runtime) Shutdown() {
	rt.shutdownOnce.Do(func() {
		close(rt.shutdownCh)
	})
}

// Fail 记录错误并请求退出 (Fail Fast)
func (rt *Runtime) Fail(err error) {
	rt.mu.Lock()
	if rt.exitErr == nil {
		rt.exitErr = err
	}
	rt.mu.Unlock()

	if rt.ErrorHandler != nil {
		rt.ErrorHandler(err)
	}
	rt.Shutdown()
}

// Err 返回触发退出的第一个错误；正常退出时为 nil
func (rt *Runtime) Err() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.exitErr
}

// Done 返回一个通道，当应用需要退出时该通道会关闭
func (rt *Runtime) Done() <-chan struct{} {
	return rt.shutdownCh
}

// Option 修改 Runtime 的启动选项，返回错误时启动中止
type Option func(rt *Runtime) error

// Apply 依次应用 Option，遇到第一个错误即返回
func (rt *Runtime) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(rt); err != nil {
			return err
		}
	}
	return nil
}

// WithLogger 设置运行时日志
func WithLogger(logger logging.Logger) Option {
	return func(rt *Runtime) error {
		if logger != nil {
			rt.Logger = logger
		}
		return nil
	}
}
