package core

import "context"

// HostedService 随 Runtime 启动和停止的服务
type HostedService interface {
	// Start 在独立的 Goroutine 中调用，可以阻塞到服务结束。
	// 返回 context.Canceled 以外的错误会使 Runtime 失败退出；
	// 注册时带 ShutdownOnExit 的服务正常返回后 Runtime 同样退出。
	Start(ctx context.Context) error

	// Stop 在 Runtime 关闭时调用，ctx 到期后应尽快返回。
	Stop(ctx context.Context) error
}
