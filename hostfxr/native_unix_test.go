//go:build darwin || freebsd || linux

package hostfxr

import (
	"path/filepath"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeStringRoundTrip(t *testing.T) {
	ptr, keep, err := newNativeString("/opt/app/App.dll")
	require.NoError(t, err)
	assert.Equal(t, "/opt/app/App.dll", goString(ptr))
	runtime.KeepAlive(keep)

	assert.Equal(t, "", goString(0))
}

func TestNativeStringRejectsNUL(t *testing.T) {
	_, _, err := newNativeString("bad\x00path")
	assert.Error(t, err)
}

func TestNativeParamsLayout(t *testing.T) {
	p, keep, err := newNativeParams(InitializeParameters{HostPath: "/app/App.dll"})
	require.NoError(t, err)
	defer runtime.KeepAlive(keep)

	assert.Equal(t, 3*unsafe.Sizeof(uintptr(0)), p.size)
	assert.Equal(t, "/app/App.dll", goString(p.hostPath))
	assert.Zero(t, p.dotnetRoot)
}

func TestOpenMissingLibrary(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), LibraryName()))
	assert.Error(t, err)
}
