package host

import (
	"context"
	"errors"
	"sync"

	"github.com/gocrud/nethost/core"
	"github.com/gocrud/nethost/logging"
)

var _ core.HostedService = (*Service)(nil)

// ErrAlreadyStarted Service 只能启动一次
var ErrAlreadyStarted = errors.New("host: service already started")

// Service 将 Host 作为托管服务运行
// .NET 应用无法从外部中断，Stop 只等待其结束
type Service struct {
	host *Host

	once    sync.Once
	started chan struct{}
	done    chan struct{}
}

// NewService 创建托管服务
func NewService(h *Host) *Service {
	return &Service{
		host:    h,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start 阻塞运行应用
func (s *Service) Start(ctx context.Context) error {
	first := false
	s.once.Do(func() {
		first = true
		close(s.started)
	})
	if !first {
		return ErrAlreadyStarted
	}

	defer close(s.done)
	return s.host.Run(ctx)
}

// Stop 等待应用结束，ctx 到期后返回 ctx.Err()
func (s *Service) Stop(ctx context.Context) error {
	select {
	case <-s.started:
	default:
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.host.logger.Warn(".NET application still running at shutdown", logging.Err(ctx.Err()))
		return ctx.Err()
	}
}

// Done 应用结束后关闭
func (s *Service) Done() <-chan struct{} {
	return s.done
}
