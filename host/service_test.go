package host

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gocrud/nethost/core"
	"github.com/gocrud/nethost/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(out *lockedBuffer) logging.Logger {
	return logging.NewLoggingBuilder().
		AddConsole(logging.ConsoleLoggerOptions{Output: out}).
		Build().
		CreateLogger("Host")
}

func TestRunInBackground(t *testing.T) {
	dir := setupApp(t, appManifest)
	rt := &fakeRuntime{exitCode: 1}
	var out lockedBuffer

	h := New(WithWorkDir(dir), WithLoader(rt.loader(nil)), WithLogger(newTestLogger(&out)))
	require.NoError(t, RunInBackground(h))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Error occurred in .NET Host thread execution")
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "Running .NET Host in a new thread...")
}

func TestRunInBackgroundNil(t *testing.T) {
	assert.ErrorIs(t, RunInBackground(nil), ErrNilHost)
}

func TestServiceWaitsForApplication(t *testing.T) {
	dir := setupApp(t, appManifest)
	rt := &fakeRuntime{runStarted: make(chan struct{}), releaseRun: make(chan struct{})}
	svc := NewService(New(WithWorkDir(dir), WithLoader(rt.loader(nil))))

	runtime := core.NewRuntime()
	require.NoError(t, runtime.Apply(core.WithHostedService(svc, core.Named("dotnet"), core.ShutdownOnExit())))
	require.NoError(t, runtime.Lifecycle.Start(context.Background()))

	select {
	case <-rt.runStarted:
	case <-time.After(time.Second):
		t.Fatal("application did not start")
	}

	// 应用仍在运行，Stop 超时
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Stop(ctx), context.DeadlineExceeded)

	close(rt.releaseRun)
	select {
	case <-runtime.Done():
	case <-time.After(time.Second):
		t.Fatal("runtime was not shut down after the application exited")
	}
	require.NoError(t, runtime.Lifecycle.Stop(context.Background()))
	assert.NoError(t, runtime.Err())
	assert.Equal(t, []string{"locate", "init", "run", "close"}, rt.Calls())
}

func TestServiceFailureFailsRuntime(t *testing.T) {
	rt := &fakeRuntime{}
	svc := NewService(New(WithWorkDir(t.TempDir()), WithLoader(rt.loader(nil))))

	runtime := core.NewRuntime()
	runtime.ErrorHandler = func(error) {}
	require.NoError(t, runtime.Apply(core.WithHostedService(svc)))
	require.NoError(t, runtime.Lifecycle.Start(context.Background()))

	select {
	case <-runtime.Done():
	case <-time.After(time.Second):
		t.Fatal("runtime was not shut down")
	}
	assert.ErrorIs(t, runtime.Err(), ErrManifestNotFound)
	require.NoError(t, runtime.Lifecycle.Stop(context.Background()))
}

func TestServiceStopBeforeStart(t *testing.T) {
	svc := NewService(New())
	assert.NoError(t, svc.Stop(context.Background()))
}

func TestServiceStartTwice(t *testing.T) {
	svc := NewService(New(WithWorkDir(t.TempDir())))
	_ = svc.Start(context.Background())
	assert.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyStarted)
	<-svc.Done()
}
