package host

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocrud/nethost/hostfxr"
	"github.com/gocrud/nethost/logging"
)

// RuntimeConfigPath app.dll -> app.runtimeconfig.json
func RuntimeConfigPath(assembly string) string {
	return strings.TrimSuffix(assembly, filepath.Ext(assembly)) + ".runtimeconfig.json"
}

// delegateTypeName 清单中的 "UnmanagedCallersOnly" 转为 hostfxr 的约定值
func delegateTypeName(name string) string {
	switch name {
	case "UnmanagedCallersOnly", hostfxr.UnmanagedCallersOnly:
		return hostfxr.UnmanagedCallersOnly
	default:
		return name
	}
}

// runComponent 以组件方式加载程序集并调用入口方法
// 参数以 JSON 字符串数组的 UTF-8 字节传入 (ptr, size)
func (h *Host) runComponent(rt Runtime, manifest *Manifest, assembly string) error {
	config := RuntimeConfigPath(assembly)
	if _, err := os.Stat(config); err != nil {
		h.logger.Error("Runtime config not found", logging.Field{Key: "path", Value: config})
		return fmt.Errorf("runtime config not found: %s: %w", config, err)
	}

	h.logger.Info("Initializing .NET runtime...", logging.Field{Key: "runtimeConfig", Value: config})
	handle, err := rt.InitializeForRuntimeConfig(config, hostfxr.InitializeParameters{DotnetRoot: h.opts.dotnetRoot})
	if err != nil {
		h.logger.Error("Failed to initialize .NET runtime", logging.Err(err))
		return fmt.Errorf("failed to initialize .NET runtime: %w", err)
	}
	h.logger.Info("Runtime initialized successfully")
	defer h.close(rt, handle)

	fn, err := rt.LoadAssemblyAndGetFunctionPointer(handle, assembly,
		manifest.TypeName, manifest.MethodName, delegateTypeName(manifest.DelegateTypeName))
	if err != nil {
		h.logger.Error("Failed to load entry point", logging.Err(err),
			logging.Field{Key: "type", Value: manifest.TypeName},
			logging.Field{Key: "method", Value: manifest.MethodName})
		return fmt.Errorf("failed to load %s.%s: %w", manifest.TypeName, manifest.MethodName, err)
	}

	payload, err := json.Marshal(manifest.Arguments)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}

	leave, err := enterApartment()
	if err != nil {
		h.logger.Error("Failed to initialize COM", logging.Err(err))
		return fmt.Errorf("failed to initialize COM: %w", err)
	}

	h.logger.Info("Running .NET application...",
		logging.Field{Key: "type", Value: manifest.TypeName},
		logging.Field{Key: "method", Value: manifest.MethodName})

	code := rt.CallComponentEntryPoint(fn, payload)
	leave()

	return h.completed(code)
}
