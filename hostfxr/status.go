package hostfxr

import (
	"errors"
	"fmt"
)

// StatusCode hostfxr 导出函数返回的状态码
// 高位为 0 表示成功，失败码都在 0x8000_8xxx 区间
type StatusCode uint32

const (
	Success                            StatusCode = 0
	Success_HostAlreadyInitialized     StatusCode = 0x00000001
	Success_DifferentRuntimeProperties StatusCode = 0x00000002

	InvalidArgFailure          StatusCode = 0x80008081
	CoreHostLibLoadFailure     StatusCode = 0x80008082
	CoreHostLibMissingFailure  StatusCode = 0x80008083
	CoreHostEntryPointFailure  StatusCode = 0x80008084
	CoreHostCurHostFindFailure StatusCode = 0x80008085
	CoreClrResolveFailure      StatusCode = 0x80008087
	CoreClrBindFailure         StatusCode = 0x80008088
	CoreClrInitFailure         StatusCode = 0x80008089
	CoreClrExeFailure          StatusCode = 0x8000808a
	ResolverInitFailure        StatusCode = 0x8000808b
	ResolverResolveFailure     StatusCode = 0x8000808c
	LibHostCurExeFindFailure   StatusCode = 0x8000808d
	LibHostInitFailure         StatusCode = 0x8000808e
	LibHostExecModeFailure     StatusCode = 0x80008090
	LibHostSdkFindFailure      StatusCode = 0x80008091
	LibHostInvalidArgs         StatusCode = 0x80008092
	InvalidConfigFile          StatusCode = 0x80008093
	AppArgNotRunnable          StatusCode = 0x80008094
	AppHostExeNotBoundFailure  StatusCode = 0x80008095
	FrameworkMissingFailure    StatusCode = 0x80008096
	HostApiFailed              StatusCode = 0x80008097
	HostApiBufferTooSmall      StatusCode = 0x80008098
	LibHostUnknownCommand      StatusCode = 0x80008099
	LibHostAppRootFindFailure  StatusCode = 0x8000809a
	SdkResolverResolveFailure  StatusCode = 0x8000809b
	FrameworkCompatFailure     StatusCode = 0x8000809c
	FrameworkCompatRetry       StatusCode = 0x8000809d
	BundleExtractionFailure    StatusCode = 0x8000809f
	BundleExtractionIOError    StatusCode = 0x800080a0
	LibHostDuplicateProperty   StatusCode = 0x800080a1
	HostApiUnsupportedVersion  StatusCode = 0x800080a2
	HostInvalidState           StatusCode = 0x800080a3
	HostPropertyNotFound       StatusCode = 0x800080a4
	CoreHostIncompatibleConfig StatusCode = 0x800080a5
	HostApiUnsupportedScenario StatusCode = 0x800080a6
	HostFeatureDisabled        StatusCode = 0x800080a7
)

var statusNames = map[StatusCode]string{
	Success:                            "Success",
	Success_HostAlreadyInitialized:     "Success_HostAlreadyInitialized",
	Success_DifferentRuntimeProperties: "Success_DifferentRuntimeProperties",
	InvalidArgFailure:                  "InvalidArgFailure",
	CoreHostLibLoadFailure:             "CoreHostLibLoadFailure",
	CoreHostLibMissingFailure:          "CoreHostLibMissingFailure",
	CoreHostEntryPointFailure:          "CoreHostEntryPointFailure",
	CoreHostCurHostFindFailure:         "CoreHostCurHostFindFailure",
	CoreClrResolveFailure:              "CoreClrResolveFailure",
	CoreClrBindFailure:                 "CoreClrBindFailure",
	CoreClrInitFailure:                 "CoreClrInitFailure",
	CoreClrExeFailure:                  "CoreClrExeFailure",
	ResolverInitFailure:                "ResolverInitFailure",
	ResolverResolveFailure:             "ResolverResolveFailure",
	LibHostCurExeFindFailure:           "LibHostCurExeFindFailure",
	LibHostInitFailure:                 "LibHostInitFailure",
	LibHostExecModeFailure:             "LibHostExecModeFailure",
	LibHostSdkFindFailure:              "LibHostSdkFindFailure",
	LibHostInvalidArgs:                 "LibHostInvalidArgs",
	InvalidConfigFile:                  "InvalidConfigFile",
	AppArgNotRunnable:                  "AppArgNotRunnable",
	AppHostExeNotBoundFailure:          "AppHostExeNotBoundFailure",
	FrameworkMissingFailure:            "FrameworkMissingFailure",
	HostApiFailed:                      "HostApiFailed",
	HostApiBufferTooSmall:              "HostApiBufferTooSmall",
	LibHostUnknownCommand:              "LibHostUnknownCommand",
	LibHostAppRootFindFailure:          "LibHostAppRootFindFailure",
	SdkResolverResolveFailure:          "SdkResolverResolveFailure",
	FrameworkCompatFailure:             "FrameworkCompatFailure",
	FrameworkCompatRetry:               "FrameworkCompatRetry",
	BundleExtractionFailure:            "BundleExtractionFailure",
	BundleExtractionIOError:            "BundleExtractionIOError",
	LibHostDuplicateProperty:           "LibHostDuplicateProperty",
	HostApiUnsupportedVersion:          "HostApiUnsupportedVersion",
	HostInvalidState:                   "HostInvalidState",
	HostPropertyNotFound:               "HostPropertyNotFound",
	CoreHostIncompatibleConfig:         "CoreHostIncompatibleConfig",
	HostApiUnsupportedScenario:         "HostApiUnsupportedScenario",
	HostFeatureDisabled:                "HostFeatureDisabled",
}

// IsSuccess 成功码（包括 Success_HostAlreadyInitialized 等）
func (c StatusCode) IsSuccess() bool {
	return c&0x80000000 == 0
}

// Name 返回已知状态码的名称，未知时为空
func (c StatusCode) Name() string {
	return statusNames[c]
}

// String 形如 "0x80008083 (CoreHostLibMissingFailure)"
func (c StatusCode) String() string {
	if name, ok := statusNames[c]; ok {
		return fmt.Sprintf("0x%08x (%s)", uint32(c), name)
	}
	return fmt.Sprintf("0x%08x", uint32(c))
}

// Int32 以有符号整数形式返回，与 C 侧 int32_t 返回值一致
func (c StatusCode) Int32() int32 {
	return int32(c)
}

// StatusError 某个 hostfxr 调用返回了失败状态码
type StatusError struct {
	Op   string
	Code StatusCode
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hostfxr: %s failed with code %s", e.Op, e.Code)
}

// check 失败码转换为 *StatusError
func check(op string, code StatusCode) error {
	if code.IsSuccess() {
		return nil
	}
	return &StatusError{Op: op, Code: code}
}

// CodeOf 从错误链中取出 hostfxr 状态码
func CodeOf(err error) (StatusCode, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
