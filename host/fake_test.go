package host

import (
	"sync"

	"github.com/gocrud/nethost/hostfxr"
	"github.com/gocrud/nethost/logging"
)

// fakeRuntime 记录调用顺序的 Runtime
type fakeRuntime struct {
	mu    sync.Mutex
	calls []string

	initErr  error
	exitCode int32
	loadErr  error

	args       []string
	params     hostfxr.InitializeParameters
	configPath string
	loadArgs   []string
	payload    []byte
	runStarted chan struct{}
	releaseRun chan struct{}
}

const fakeHandle hostfxr.Handle = 0x1234

func (f *fakeRuntime) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRuntime) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRuntime) InitializeForCommandLine(args []string, params hostfxr.InitializeParameters) (hostfxr.Handle, error) {
	f.record("init")
	f.args = args
	f.params = params
	if f.initErr != nil {
		return 0, f.initErr
	}
	return fakeHandle, nil
}

func (f *fakeRuntime) InitializeForRuntimeConfig(configPath string, params hostfxr.InitializeParameters) (hostfxr.Handle, error) {
	f.record("initConfig")
	f.configPath = configPath
	f.params = params
	if f.initErr != nil {
		return 0, f.initErr
	}
	return fakeHandle, nil
}

func (f *fakeRuntime) LoadAssemblyAndGetFunctionPointer(handle hostfxr.Handle, assemblyPath, typeName, methodName, delegateTypeName string) (uintptr, error) {
	f.record("load")
	f.loadArgs = []string{assemblyPath, typeName, methodName, delegateTypeName}
	if f.loadErr != nil {
		return 0, f.loadErr
	}
	return 0xbeef, nil
}

func (f *fakeRuntime) CallComponentEntryPoint(fn uintptr, payload []byte) int32 {
	f.record("call")
	f.payload = payload
	return f.exitCode
}

func (f *fakeRuntime) RunApp(handle hostfxr.Handle) int32 {
	f.record("run")
	if f.runStarted != nil {
		close(f.runStarted)
	}
	if f.releaseRun != nil {
		<-f.releaseRun
	}
	return f.exitCode
}

func (f *fakeRuntime) Close(handle hostfxr.Handle) error {
	f.record("close")
	return nil
}

// loader 返回固定 Runtime 的 Loader，并记录定位参数
func (f *fakeRuntime) loader(located *hostfxr.LocateOptions) Loader {
	return func(opts hostfxr.LocateOptions, _ logging.Logger) (Runtime, error) {
		f.record("locate")
		if located != nil {
			*located = opts
		}
		return f, nil
	}
}
