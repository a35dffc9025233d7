//go:build windows

package hostfxr

import (
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

func openLibrary(path string) (uintptr, error) {
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS|windows.LOAD_LIBRARY_SEARCH_DLL_LOAD_DIR)
	return uintptr(h), err
}

func lookupSymbol(module uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(module), name)
}

func closeLibrary(module uintptr) {
	windows.FreeLibrary(windows.Handle(module))
}

// callNative 调用原生函数
// 调用方以 uintptr(unsafe.Pointer(p)) 形式传入的指针在调用结束前保持有效，
// 栈上的对象因此会被分配到堆上，不会因栈扩容而移动
//
//go:uintptrescapes
func callNative(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := syscall.SyscallN(fn, args...)
	return r1
}

// newNativeString char_t 在 Windows 上是 wchar_t，以 UTF-16 传递
func newNativeString(s string) (uintptr, any, error) {
	p, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return 0, nil, err
	}
	return uintptr(unsafe.Pointer(p)), p, nil
}

var (
	errorWriterOnce sync.Once
	errorWriterPtr  uintptr
)

func errorWriterCallback() uintptr {
	errorWriterOnce.Do(func() {
		errorWriterPtr = windows.NewCallback(func(message uintptr) uintptr {
			dispatchErrorWriter(windows.UTF16PtrToString((*uint16)(unsafe.Pointer(message))))
			return 0
		})
	})
	return errorWriterPtr
}
