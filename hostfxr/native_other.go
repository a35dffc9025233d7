//go:build !darwin && !freebsd && !linux && !windows

package hostfxr

func openLibrary(path string) (uintptr, error) {
	return 0, ErrUnsupportedPlatform
}

func lookupSymbol(module uintptr, name string) (uintptr, error) {
	return 0, ErrUnsupportedPlatform
}

func closeLibrary(module uintptr) {}

func callNative(fn uintptr, args ...uintptr) uintptr {
	return uintptr(HostApiUnsupportedScenario)
}

func newNativeString(s string) (uintptr, any, error) {
	return 0, nil, ErrUnsupportedPlatform
}

func errorWriterCallback() uintptr {
	return 0
}
