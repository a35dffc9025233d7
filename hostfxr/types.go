package hostfxr

// Handle hostfxr_handle，不透明的宿主上下文
type Handle uintptr

// DelegateType hostfxr_delegate_type
type DelegateType int32

const (
	DelegateComActivation                 DelegateType = 0
	DelegateLoadInMemoryAssembly          DelegateType = 1
	DelegateWinRTActivation               DelegateType = 2
	DelegateComRegister                   DelegateType = 3
	DelegateComUnregister                 DelegateType = 4
	DelegateLoadAssemblyAndGetFunctionPtr DelegateType = 5
	DelegateGetFunctionPointer            DelegateType = 6
	DelegateLoadAssembly                  DelegateType = 7
	DelegateLoadAssemblyBytes             DelegateType = 8
)

// UnmanagedCallersOnly 作为 delegate_type_name 传入时，表示目标方法标注了
// [UnmanagedCallersOnly]，对应 C 侧的 (const char_t*)-1
const UnmanagedCallersOnly = "[UnmanagedCallersOnly]"

// InitializeParameters hostfxr_initialize_parameters
// 空字符串在调用时转换为 NULL
type InitializeParameters struct {
	// HostPath 宿主路径，以命令行方式初始化时通常为程序集路径
	HostPath string
	// DotnetRoot .NET 安装根目录
	DotnetRoot string
}

// 导出符号名
const (
	symInitializeForCommandLine   = "hostfxr_initialize_for_dotnet_command_line"
	symInitializeForRuntimeConfig = "hostfxr_initialize_for_runtime_config"
	symGetRuntimeDelegate         = "hostfxr_get_runtime_delegate"
	symRunApp                     = "hostfxr_run_app"
	symClose                      = "hostfxr_close"
	symSetErrorWriter             = "hostfxr_set_error_writer"
)
