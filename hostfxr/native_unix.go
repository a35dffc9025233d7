//go:build darwin || freebsd || linux

package hostfxr

import (
	"errors"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_LOCAL)
}

func lookupSymbol(module uintptr, name string) (uintptr, error) {
	return purego.Dlsym(module, name)
}

func closeLibrary(module uintptr) {
	purego.Dlclose(module)
}

// callNative 调用原生函数
// 调用方以 uintptr(unsafe.Pointer(p)) 形式传入的指针在调用结束前保持有效，
// 栈上的对象因此会被分配到堆上，不会因栈扩容而移动
//
//go:uintptrescapes
func callNative(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

// newNativeString char_t 在 Unix 上是 char，以 UTF-8 加 NUL 结尾传递
// 第二个返回值必须在调用期间保持存活
func newNativeString(s string) (uintptr, any, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return 0, nil, errors.New("hostfxr: string contains NUL byte")
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return uintptr(unsafe.Pointer(&b[0])), b, nil
}

// goString 读取以 NUL 结尾的 C 字符串
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := (*byte)(unsafe.Pointer(p))
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(ptr), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(ptr, n))
}

var (
	errorWriterOnce sync.Once
	errorWriterPtr  uintptr
)

// errorWriterCallback void (*)(const char_t *message)
// purego 回调数量有上限，整个进程只创建一次
func errorWriterCallback() uintptr {
	errorWriterOnce.Do(func() {
		errorWriterPtr = purego.NewCallback(func(message uintptr) {
			dispatchErrorWriter(goString(message))
		})
	})
	return errorWriterPtr
}
