package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/nethost/logging"
)

// HostedOption 托管服务注册选项
type HostedOption func(*hostedOptions)

type hostedOptions struct {
	name string
	// shutdownOnExit 服务正常结束时是否请求 Runtime 退出
	shutdownOnExit bool
}

// Named 设置托管服务名称（用于日志）
func Named(name string) HostedOption {
	return func(o *hostedOptions) { o.name = name }
}

// ShutdownOnExit 服务正常返回后也触发 Runtime 退出
// 适用于“跑完即结束”的服务，例如托管的 .NET 应用
func ShutdownOnExit() HostedOption {
	return func(o *hostedOptions) { o.shutdownOnExit = true }
}

// WithHostedService 注册一个托管服务
// 框架会在 OnStart 时启动 Goroutine 调用 Start，在 OnStop 时取消上下文并调用 Stop。
func WithHostedService(svc HostedService, opts ...HostedOption) Option {
	return func(rt *Runtime) error {
		if svc == nil {
			return errors.New("WithHostedService: service is nil")
		}

		o := &hostedOptions{name: fmt.Sprintf("%T", svc)}
		for _, opt := range opts {
			opt(o)
		}

		var (
			serviceCancel context.CancelFunc
			mu            sync.Mutex
		)

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			// 服务上下文伴随应用运行，不继承启动上下文的超时
			serviceCtx, cancel := context.WithCancel(context.Background())
			mu.Lock()
			serviceCancel = cancel
			mu.Unlock()

			rt.Logger.Debug("Starting hosted service", logging.Field{Key: "service", Value: o.name})

			go func() {
				err := svc.Start(serviceCtx)
				switch {
				case err != nil && !errors.Is(err, context.Canceled):
					rt.Fail(fmt.Errorf("HostedService %s exited with error: %w", o.name, err))
				case o.shutdownOnExit:
					rt.Logger.Info("Hosted service completed", logging.Field{Key: "service", Value: o.name})
					rt.Shutdown()
				}
			}()
			return nil
		})

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			mu.Lock()
			cancel := serviceCancel
			mu.Unlock()
			if cancel != nil {
				cancel()
			}
			if err := svc.Stop(ctx); err != nil {
				return fmt.Errorf("HostedService %s stop: %w", o.name, err)
			}
			return nil
		})

		return nil
	}
}

// WorkerFunc 定义简单的后台任务函数
// 这是一个阻塞函数，通过 ctx.Done() 判断退出。
type WorkerFunc func(ctx context.Context) error

// WithWorker 将一个阻塞的函数注册为后台服务
func WithWorker(fn WorkerFunc, opts ...HostedOption) Option {
	return WithHostedService(&workerService{fn: fn}, opts...)
}

// workerService 将 WorkerFunc 适配为 HostedService
type workerService struct {
	fn WorkerFunc
}

func (w *workerService) Start(ctx context.Context) error {
	return w.fn(ctx)
}

func (w *workerService) Stop(ctx context.Context) error {
	return nil
}
