// Package host 按 net-host.json 清单启动 .NET 应用
//
// 流程：加载清单 -> 定位并加载 hostfxr -> 初始化宿主上下文 -> 运行 -> 关闭。
// 任一步骤失败都会返回带有步骤说明的错误，原生状态码可通过 hostfxr.CodeOf 取得。
package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gocrud/nethost/hostfxr"
	"github.com/gocrud/nethost/logging"
)

// Mode 启动方式
type Mode string

const (
	// ModeRun 以 "dotnet app.dll args" 的方式运行 Main
	ModeRun Mode = "run"
	// ModeComponent 通过 runtimeconfig 初始化，调用 typeName.methodName 组件入口
	ModeComponent Mode = "component"
)

// ParseMode 解析启动方式，空字符串为 ModeRun
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRun:
		return ModeRun, nil
	case ModeComponent:
		return ModeComponent, nil
	default:
		return "", fmt.Errorf("host: unknown mode %q", s)
	}
}

// ErrAssemblyNotFound 清单中的程序集不存在
var ErrAssemblyNotFound = errors.New("host: assembly not found")

// ExitError 应用以非零退出码结束
type ExitError struct {
	Code int32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("host: application exited with code %d", e.Code)
}

// ExitCode 将 Run 的结果映射为进程退出码
// 成功为 0，任何失败（包括应用非零退出）均为 -1；应用退出码保留在 ExitError 中
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return -1
}

type options struct {
	manifestPath string
	workDir      string
	dotnetRoot   string
	mode         Mode
	logger       logging.Logger
	loader       Loader
	getenv       func(string) string
}

// Option Host 选项
type Option func(*options)

// WithManifest 设置清单路径，默认 <workDir>/net-host.json
func WithManifest(path string) Option {
	return func(o *options) { o.manifestPath = path }
}

// WithWorkDir 设置工作目录，默认当前目录
func WithWorkDir(dir string) Option {
	return func(o *options) { o.workDir = dir }
}

// WithDotnetRoot 指定 .NET 安装根目录，优先于环境变量
func WithDotnetRoot(root string) Option {
	return func(o *options) { o.dotnetRoot = root }
}

// WithMode 设置启动方式
func WithMode(mode Mode) Option {
	return func(o *options) { o.mode = mode }
}

// WithLogger 设置日志
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLoader 替换 hostfxr 加载方式
func WithLoader(loader Loader) Option {
	return func(o *options) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// WithGetenv 替换定位 hostfxr 时读取环境变量的函数
func WithGetenv(getenv func(string) string) Option {
	return func(o *options) { o.getenv = getenv }
}

// Host 一次 .NET 应用启动
type Host struct {
	opts   options
	logger logging.Logger
}

// New 创建 Host
func New(opts ...Option) *Host {
	o := options{
		mode:   ModeRun,
		logger: logging.Nop(),
		loader: LoadHostfxr,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Host{opts: o, logger: o.logger}
}

// WorkDir 工作目录，未设置时为当前目录
func (h *Host) WorkDir() (string, error) {
	if h.opts.workDir != "" {
		return filepath.Abs(h.opts.workDir)
	}
	return os.Getwd()
}

// ManifestPath 清单文件路径
func (h *Host) ManifestPath() (string, error) {
	if h.opts.manifestPath != "" {
		return filepath.Abs(h.opts.manifestPath)
	}
	dir, err := h.WorkDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultManifestName), nil
}

// LocateOptions 返回定位 hostfxr 使用的参数
func (h *Host) LocateOptions(assemblyPath string) hostfxr.LocateOptions {
	return hostfxr.LocateOptions{
		AssemblyPath: assemblyPath,
		DotnetRoot:   h.opts.dotnetRoot,
		Getenv:       h.opts.getenv,
	}
}

// Run 加载清单并运行应用，阻塞直到应用结束
// 原生调用无法取消，ctx 只在各步骤之间检查
func (h *Host) Run(ctx context.Context) error {
	h.logger.Info("=== .NET Generic Host ===")

	// 1. 清单
	manifest, workDir, err := h.loadManifest()
	if err != nil {
		h.logger.Error("Failed to load configuration", logging.Err(err))
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	manifest.LogSummary(h.logger)

	assembly := manifest.Resolve(workDir)
	if err := ctx.Err(); err != nil {
		return err
	}

	// 2. hostfxr
	rt, err := h.opts.loader(h.LocateOptions(assembly), h.logger.WithCategory("hostfxr"))
	if err != nil {
		h.logger.Error("Failed to load hostfxr", logging.Err(err))
		return fmt.Errorf("failed to load hostfxr: %w", err)
	}
	h.logger.Info("hostfxr loaded successfully")

	// 3. 程序集
	if _, err := os.Stat(assembly); err != nil {
		h.logger.Error("Assembly not found", logging.Field{Key: "path", Value: assembly})
		return fmt.Errorf("%w: %s", ErrAssemblyNotFound, assembly)
	}
	h.logger.Info("Assembly found", logging.Field{Key: "path", Value: assembly})
	if err := ctx.Err(); err != nil {
		return err
	}

	// hostfxr 上下文与 COM 套间都绑定在当前线程上
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// 清单声明了 delegateTypeName 时同样走组件方式
	if h.opts.mode == ModeComponent || manifest.DelegateTypeName != "" {
		return h.runComponent(rt, manifest, assembly)
	}
	return h.runApp(rt, manifest, assembly)
}

func (h *Host) loadManifest() (*Manifest, string, error) {
	workDir, err := h.WorkDir()
	if err != nil {
		return nil, "", err
	}
	path, err := h.ManifestPath()
	if err != nil {
		return nil, "", err
	}
	h.logger.Debug("Loading configuration", logging.Field{Key: "path", Value: path})

	manifest, err := LoadManifest(path)
	if err != nil {
		return nil, "", err
	}
	return manifest, workDir, nil
}

func (h *Host) params(assembly string) hostfxr.InitializeParameters {
	return hostfxr.InitializeParameters{
		HostPath:   assembly,
		DotnetRoot: h.opts.dotnetRoot,
	}
}

// runApp 4-7：初始化、运行、关闭
func (h *Host) runApp(rt Runtime, manifest *Manifest, assembly string) error {
	args := manifest.CommandLine(assembly)
	h.logger.Info("Initializing .NET runtime...", logging.Field{Key: "argc", Value: len(args)})

	handle, err := rt.InitializeForCommandLine(args, h.params(assembly))
	if err != nil {
		// 初始化失败时没有可关闭的上下文
		h.logger.Error("Failed to initialize .NET runtime", logging.Err(err))
		return fmt.Errorf("failed to initialize .NET runtime: %w", err)
	}
	h.logger.Info("Runtime initialized successfully")
	defer h.close(rt, handle)

	leave, err := enterApartment()
	if err != nil {
		h.logger.Error("Failed to initialize COM", logging.Err(err))
		return fmt.Errorf("failed to initialize COM: %w", err)
	}

	h.logger.Info("Running .NET application...",
		logging.Field{Key: "type", Value: manifest.TypeName},
		logging.Field{Key: "method", Value: manifest.MethodName})

	code := rt.RunApp(handle)
	leave()

	return h.completed(code)
}

// completed 记录应用结束状态，非零退出码包装为 ExitError
func (h *Host) completed(code int32) error {
	if code != 0 {
		h.logger.Error(fmt.Sprintf("Application execution failed with code: %d", code),
			logging.Field{Key: "exitCode", Value: code})
		return &ExitError{Code: code}
	}
	h.logger.Info("Application completed successfully")
	return nil
}

func (h *Host) close(rt Runtime, handle hostfxr.Handle) {
	if err := rt.Close(handle); err != nil {
		h.logger.Warn("Failed to close host context", logging.Err(err))
	}
}
