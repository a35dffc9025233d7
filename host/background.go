package host

import (
	"context"
	"errors"

	"github.com/gocrud/nethost/logging"
)

// ErrNilHost RunInBackground 收到 nil
var ErrNilHost = errors.New("host: nil host")

// RunInBackground 在新的 goroutine 中运行 h 并立即返回
// 运行结果只写入日志，调用方无法等待或取消
func RunInBackground(h *Host) error {
	if h == nil {
		return ErrNilHost
	}

	go func() {
		if err := h.Run(context.Background()); err != nil {
			h.logger.Error("Error occurred in .NET Host thread execution", logging.Err(err))
		}
	}()

	h.logger.Info("Running .NET Host in a new thread...")
	return nil
}
