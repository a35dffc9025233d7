package nethost

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocrud/nethost/core"
)

// ShutdownTimeout 优雅关闭的超时时间
var ShutdownTimeout = 5 * time.Second

// Run 启动运行时，直到收到退出信号或运行时自身请求退出
func Run(opts ...core.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, opts...)
}

// RunContext 与 Run 相同，以 ctx 取消代替系统信号
// 返回值包含触发退出的错误（例如托管服务失败）以及关闭过程中的错误
func RunContext(ctx context.Context, opts ...core.Option) error {
	rt := core.NewRuntime()

	// 1. 应用所有选项：注册 Feature、托管服务和生命周期钩子
	if err := rt.Apply(opts...); err != nil {
		return err
	}

	// 2. 启动生命周期
	if err := rt.Lifecycle.Start(ctx); err != nil {
		return err
	}

	// 3. 阻塞直到外部取消或运行时内部触发退出 (rt.Shutdown / rt.Fail)
	select {
	case <-ctx.Done():
		rt.Logger.Info("Shutdown requested")
	case <-rt.Done():
	}

	// 4. 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	stopErr := rt.Lifecycle.Stop(shutdownCtx)
	return errors.Join(rt.Err(), stopErr)
}
