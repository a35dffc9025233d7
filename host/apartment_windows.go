//go:build windows

package host

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// RPC_E_CHANGED_MODE：线程已以 MTA 初始化
const rpcEChangedMode = syscall.Errno(0x80010106)

// sFalse：线程已初始化为同一种套间
const sFalse = syscall.Errno(1)

// enterApartment 将当前线程初始化为 STA，返回的函数撤销初始化
func enterApartment() (func(), error) {
	err := windows.CoInitializeEx(0, windows.COINIT_APARTMENTTHREADED)
	switch {
	case err == nil, errors.Is(err, sFalse):
		return windows.CoUninitialize, nil
	case errors.Is(err, rpcEChangedMode):
		// 已有的套间保持不变，也无需 CoUninitialize
		return func() {}, nil
	default:
		return nil, err
	}
}
