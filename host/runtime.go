package host

import (
	"errors"
	"fmt"

	"github.com/gocrud/nethost/hostfxr"
	"github.com/gocrud/nethost/logging"
)

// Runtime Host 依赖的 hostfxr 能力，*hostfxr.Library 实现了该接口
type Runtime interface {
	InitializeForCommandLine(args []string, params hostfxr.InitializeParameters) (hostfxr.Handle, error)
	InitializeForRuntimeConfig(configPath string, params hostfxr.InitializeParameters) (hostfxr.Handle, error)
	LoadAssemblyAndGetFunctionPointer(handle hostfxr.Handle, assemblyPath, typeName, methodName, delegateTypeName string) (uintptr, error)
	CallComponentEntryPoint(fn uintptr, payload []byte) int32
	RunApp(handle hostfxr.Handle) int32
	Close(handle hostfxr.Handle) error
}

// Loader 定位并加载 hostfxr
type Loader func(opts hostfxr.LocateOptions, logger logging.Logger) (Runtime, error)

// LoadHostfxr 默认 Loader：Locate + Open，并把 hostfxr 的错误输出转到日志
func LoadHostfxr(opts hostfxr.LocateOptions, logger logging.Logger) (Runtime, error) {
	path, err := hostfxr.Locate(opts)
	if err != nil {
		return nil, fmt.Errorf("get_hostfxr_path failed: %w", err)
	}
	logger.Debug("Resolved hostfxr", logging.Field{Key: "path", Value: path})

	lib, err := hostfxr.Open(path, hostfxr.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	native := logger.WithCategory("hostfxr")
	if err := lib.SetErrorWriter(func(msg string) {
		native.Error(msg)
	}); err != nil && !errors.Is(err, hostfxr.ErrNotSupported) {
		logger.Warn("Failed to install hostfxr error writer", logging.Err(err))
	}
	return lib, nil
}
