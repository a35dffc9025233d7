// Package hostfxr 通过动态符号查找调用 .NET 宿主解析库 (hostfxr)
//
// 调用顺序与 dotnet 宿主一致：
//
//	Locate -> Open -> InitializeForCommandLine -> RunApp -> Close
//
// Unix 平台使用 purego 完成 dlopen/dlsym，无需 cgo；Windows 使用 LoadLibrary。
package hostfxr

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/gocrud/nethost/logging"
)

var (
	// ErrSymbolNotFound 库中缺少必需的导出函数
	ErrSymbolNotFound = errors.New("hostfxr: symbol not found")
	// ErrUnsupportedPlatform 当前平台无法动态加载 hostfxr
	ErrUnsupportedPlatform = errors.New("hostfxr: dynamic loading is not supported on this platform")
	// ErrNotSupported 库版本过旧，缺少可选导出函数
	ErrNotSupported = errors.New("hostfxr: operation not supported by this hostfxr version")
)

// Library 已加载的 hostfxr 库及其导出函数
type Library struct {
	path   string
	module uintptr
	logger logging.Logger

	initForCmdLine uintptr
	initForConfig  uintptr
	getDelegate    uintptr
	runApp         uintptr
	closeFn        uintptr
	setErrorWriter uintptr

	// loadAssemblyAndGetFunctionPointer 按宿主上下文缓存
	delegates map[Handle]uintptr
	mu        sync.Mutex
}

// Option Library 选项
type Option func(*Library)

// WithLogger 设置日志
func WithLogger(logger logging.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Open 加载 path 指向的 hostfxr 并解析导出函数
// hostfxr_initialize_for_dotnet_command_line、hostfxr_get_runtime_delegate、
// hostfxr_run_app、hostfxr_close 为必需符号
func Open(path string, opts ...Option) (*Library, error) {
	l := &Library{
		path:      path,
		logger:    logging.Nop(),
		delegates: make(map[Handle]uintptr),
	}
	for _, opt := range opts {
		opt(l)
	}

	module, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("hostfxr: failed to load %s: %w", path, err)
	}
	l.module = module

	required := []struct {
		name string
		dst  *uintptr
	}{
		{symInitializeForCommandLine, &l.initForCmdLine},
		{symGetRuntimeDelegate, &l.getDelegate},
		{symRunApp, &l.runApp},
		{symClose, &l.closeFn},
	}
	for _, sym := range required {
		fn, err := lookupSymbol(module, sym.name)
		if err != nil || fn == 0 {
			closeLibrary(module)
			return nil, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, sym.name, path)
		}
		*sym.dst = fn
	}

	// 可选符号，旧版本 hostfxr 可能没有
	if fn, err := lookupSymbol(module, symInitializeForRuntimeConfig); err == nil {
		l.initForConfig = fn
	}
	if fn, err := lookupSymbol(module, symSetErrorWriter); err == nil {
		l.setErrorWriter = fn
	}

	l.logger.Debug("hostfxr loaded", logging.Field{Key: "path", Value: path})
	return l, nil
}

// Path 库文件路径
func (l *Library) Path() string {
	return l.path
}

// InitializeForCommandLine 以 "dotnet [args]" 的方式初始化宿主上下文
// args[0] 为应用程序集路径
func (l *Library) InitializeForCommandLine(args []string, params InitializeParameters) (Handle, error) {
	if len(args) == 0 {
		return 0, &StatusError{Op: symInitializeForCommandLine, Code: InvalidArgFailure}
	}

	argv, keep, err := newNativeStringArray(args)
	if err != nil {
		return 0, err
	}
	p, pkeep, err := newNativeParams(params)
	if err != nil {
		return 0, err
	}

	// 输出参数经 callNative 传递，原生代码写入期间地址不变
	handle := new(Handle)
	rc := callNative(l.initForCmdLine,
		uintptr(len(args)),
		uintptr(unsafe.Pointer(&argv[0])),
		uintptr(unsafe.Pointer(p)),
		uintptr(unsafe.Pointer(handle)),
	)
	runtime.KeepAlive(handle)
	runtime.KeepAlive(argv)
	runtime.KeepAlive(keep)
	runtime.KeepAlive(p)
	runtime.KeepAlive(pkeep)

	code := StatusCode(uint32(rc))
	if err := check(symInitializeForCommandLine, code); err != nil {
		return 0, err
	}
	if *handle == 0 {
		return 0, &StatusError{Op: symInitializeForCommandLine, Code: HostInvalidState}
	}
	return *handle, nil
}

// InitializeForRuntimeConfig 通过 <app>.runtimeconfig.json 初始化宿主上下文
// 此方式初始化的上下文不能 RunApp，只能获取运行时委托
func (l *Library) InitializeForRuntimeConfig(configPath string, params InitializeParameters) (Handle, error) {
	if l.initForConfig == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotSupported, symInitializeForRuntimeConfig)
	}

	path, keep, err := newNativeString(configPath)
	if err != nil {
		return 0, err
	}
	p, pkeep, err := newNativeParams(params)
	if err != nil {
		return 0, err
	}

	handle := new(Handle)
	rc := callNative(l.initForConfig,
		path,
		uintptr(unsafe.Pointer(p)),
		uintptr(unsafe.Pointer(handle)),
	)
	runtime.KeepAlive(handle)
	runtime.KeepAlive(keep)
	runtime.KeepAlive(p)
	runtime.KeepAlive(pkeep)

	if err := check(symInitializeForRuntimeConfig, StatusCode(uint32(rc))); err != nil {
		return 0, err
	}
	if *handle == 0 {
		return 0, &StatusError{Op: symInitializeForRuntimeConfig, Code: HostInvalidState}
	}
	return *handle, nil
}

// GetRuntimeDelegate 获取指定类型的运行时委托（函数指针）
func (l *Library) GetRuntimeDelegate(handle Handle, typ DelegateType) (uintptr, error) {
	fn := new(uintptr)
	rc := callNative(l.getDelegate,
		uintptr(handle),
		uintptr(typ),
		uintptr(unsafe.Pointer(fn)),
	)
	runtime.KeepAlive(fn)
	if err := check(symGetRuntimeDelegate, StatusCode(uint32(rc))); err != nil {
		return 0, err
	}
	if *fn == 0 {
		return 0, &StatusError{Op: symGetRuntimeDelegate, Code: HostApiFailed}
	}
	return *fn, nil
}

// LoadAssemblyAndGetFunctionPointer 加载程序集并返回托管方法的函数指针
// typeName 需为程序集限定名，例如 "App.Entry, App"；
// delegateTypeName 为空时使用默认的 ComponentEntryPoint 委托签名
func (l *Library) LoadAssemblyAndGetFunctionPointer(handle Handle, assemblyPath, typeName, methodName, delegateTypeName string) (uintptr, error) {
	loader, err := l.loadAssemblyDelegate(handle)
	if err != nil {
		return 0, err
	}

	strs := []string{assemblyPath, typeName, methodName}
	ptrs := make([]uintptr, 0, 4)
	keeps := make([]any, 0, 4)
	for _, s := range strs {
		p, keep, err := newNativeString(s)
		if err != nil {
			return 0, err
		}
		ptrs = append(ptrs, p)
		keeps = append(keeps, keep)
	}

	var delegateName uintptr
	switch delegateTypeName {
	case "":
		// NULL -> ComponentEntryPoint
	case UnmanagedCallersOnly:
		delegateName = ^uintptr(0)
	default:
		p, keep, err := newNativeString(delegateTypeName)
		if err != nil {
			return 0, err
		}
		delegateName = p
		keeps = append(keeps, keep)
	}

	fn := new(uintptr)
	rc := callNative(loader,
		ptrs[0], ptrs[1], ptrs[2],
		delegateName,
		0, // reserved
		uintptr(unsafe.Pointer(fn)),
	)
	runtime.KeepAlive(fn)
	runtime.KeepAlive(keeps)

	if err := check("load_assembly_and_get_function_pointer", StatusCode(uint32(rc))); err != nil {
		return 0, err
	}
	if *fn == 0 {
		return 0, &StatusError{Op: "load_assembly_and_get_function_pointer", Code: HostApiFailed}
	}
	return *fn, nil
}

func (l *Library) loadAssemblyDelegate(handle Handle) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if fn, ok := l.delegates[handle]; ok {
		return fn, nil
	}
	fn, err := l.GetRuntimeDelegate(handle, DelegateLoadAssemblyAndGetFunctionPtr)
	if err != nil {
		return 0, err
	}
	l.delegates[handle] = fn
	return fn, nil
}

// CallComponentEntryPoint 调用 ComponentEntryPoint 签名的托管方法
// int (*)(void* arg, int32_t arg_size_in_bytes)
func (l *Library) CallComponentEntryPoint(fn uintptr, payload []byte) int32 {
	var arg uintptr
	if len(payload) > 0 {
		arg = uintptr(unsafe.Pointer(&payload[0]))
	}
	rc := callNative(fn, arg, uintptr(len(payload)))
	runtime.KeepAlive(payload)
	return int32(uint32(rc))
}

// RunApp 运行以命令行方式初始化的应用，阻塞直到 Main 返回
// 返回值为应用退出码
func (l *Library) RunApp(handle Handle) int32 {
	rc := callNative(l.runApp, uintptr(handle))
	return int32(uint32(rc))
}

// Close 关闭宿主上下文
func (l *Library) Close(handle Handle) error {
	l.mu.Lock()
	delete(l.delegates, handle)
	l.mu.Unlock()

	rc := callNative(l.closeFn, uintptr(handle))
	return check(symClose, StatusCode(uint32(rc)))
}

// SetErrorWriter 将 hostfxr 的错误输出重定向到 fn；fn 为 nil 时恢复默认（stderr）
// 错误写入回调是进程级的，对当前线程之后的所有 hostfxr 调用生效
func (l *Library) SetErrorWriter(fn func(message string)) error {
	if l.setErrorWriter == 0 {
		return fmt.Errorf("%w: %s", ErrNotSupported, symSetErrorWriter)
	}

	var cb uintptr
	if fn != nil {
		errorWriterMu.Lock()
		errorWriter = fn
		errorWriterMu.Unlock()

		cb = errorWriterCallback()
		if cb == 0 {
			return fmt.Errorf("%w: error writer callback", ErrUnsupportedPlatform)
		}
	}
	callNative(l.setErrorWriter, cb)
	return nil
}

var (
	errorWriter   func(string)
	errorWriterMu sync.RWMutex
)

// dispatchErrorWriter 由原生回调调用
func dispatchErrorWriter(message string) {
	errorWriterMu.RLock()
	fn := errorWriter
	errorWriterMu.RUnlock()
	if fn != nil {
		fn(message)
	}
}

// newNativeParams 构造 hostfxr_initialize_parameters
func newNativeParams(params InitializeParameters) (*nativeInitParams, []any, error) {
	p := &nativeInitParams{size: unsafe.Sizeof(nativeInitParams{})}
	var keeps []any

	if params.HostPath != "" {
		ptr, keep, err := newNativeString(params.HostPath)
		if err != nil {
			return nil, nil, err
		}
		p.hostPath = ptr
		keeps = append(keeps, keep)
	}
	if params.DotnetRoot != "" {
		ptr, keep, err := newNativeString(params.DotnetRoot)
		if err != nil {
			return nil, nil, err
		}
		p.dotnetRoot = ptr
		keeps = append(keeps, keep)
	}
	return p, keeps, nil
}

// nativeInitParams 与 C 结构体布局一致
//
//	struct hostfxr_initialize_parameters {
//	    size_t size;
//	    const char_t *host_path;
//	    const char_t *dotnet_root;
//	};
type nativeInitParams struct {
	size       uintptr
	hostPath   uintptr
	dotnetRoot uintptr
}

// newNativeStringArray 构造 const char_t** argv
func newNativeStringArray(args []string) ([]uintptr, []any, error) {
	argv := make([]uintptr, len(args))
	keeps := make([]any, len(args))
	for i, arg := range args {
		ptr, keep, err := newNativeString(arg)
		if err != nil {
			return nil, nil, err
		}
		argv[i] = ptr
		keeps[i] = keep
	}
	return argv, keeps, nil
}
