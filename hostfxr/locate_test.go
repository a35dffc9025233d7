package hostfxr

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeRoot 在 root 下创建 host/fxr/<version>/<lib>
func makeRoot(t *testing.T, root string, versions ...string) {
	t.Helper()
	for _, v := range versions {
		dir := filepath.Join(root, "host", "fxr", v)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, LibraryName()), []byte("fake"), 0o644))
	}
}

func noEnv(string) string { return "" }

func isolated(t *testing.T) LocateOptions {
	return LocateOptions{
		Getenv:             noEnv,
		InstallLocationDir: filepath.Join(t.TempDir(), "etc"),
		DefaultRoots:       []string{},
	}
}

func TestLocatePicksHighestVersion(t *testing.T) {
	root := t.TempDir()
	makeRoot(t, root, "6.0.25", "8.0.1", "8.0.0", "9.0.0-preview.1")
	// 没有库文件的目录和非版本目录会被跳过
	require.NoError(t, os.MkdirAll(filepath.Join(root, "host", "fxr", "10.0.0"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "host", "fxr", "latest"), 0o755))

	opts := isolated(t)
	opts.DotnetRoot = root

	path, err := Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "host", "fxr", "9.0.0-preview.1", LibraryName()), path)
}

func TestLocateReleaseBeatsPreviewOfSameVersion(t *testing.T) {
	root := t.TempDir()
	makeRoot(t, root, "9.0.0-rc.2", "9.0.0")

	opts := isolated(t)
	opts.DotnetRoot = root

	path, err := Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "host", "fxr", "9.0.0", LibraryName()), path)
}

func TestLocateAppLocalWins(t *testing.T) {
	appDir := t.TempDir()
	local := filepath.Join(appDir, LibraryName())
	require.NoError(t, os.WriteFile(local, []byte("fake"), 0o644))

	root := t.TempDir()
	makeRoot(t, root, "8.0.0")

	opts := isolated(t)
	opts.DotnetRoot = root
	opts.AssemblyPath = filepath.Join(appDir, "App.dll")

	path, err := Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, local, path)
}

func TestLocateEnvironmentOrder(t *testing.T) {
	archRoot, plainRoot := t.TempDir(), t.TempDir()
	makeRoot(t, archRoot, "8.0.0")
	makeRoot(t, plainRoot, "8.0.0")

	env := map[string]string{
		"DOTNET_ROOT_" + upperArch(): archRoot,
		"DOTNET_ROOT":                plainRoot,
	}
	opts := isolated(t)
	opts.Getenv = func(k string) string { return env[k] }

	path, err := Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archRoot, "host", "fxr", "8.0.0", LibraryName()), path)

	delete(env, "DOTNET_ROOT_"+upperArch())
	path, err = Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(plainRoot, "host", "fxr", "8.0.0", LibraryName()), path)
}

func TestLocateFallsThroughEmptyRoots(t *testing.T) {
	empty, populated := t.TempDir(), t.TempDir()
	makeRoot(t, populated, "7.0.0")

	opts := isolated(t)
	opts.DotnetRoot = empty
	opts.DefaultRoots = []string{populated}

	path, err := Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(populated, "host", "fxr", "7.0.0", LibraryName()), path)
}

func TestLocateInstallLocationFile(t *testing.T) {
	root := t.TempDir()
	makeRoot(t, root, "8.0.0")

	opts := isolated(t)
	require.NoError(t, os.MkdirAll(opts.InstallLocationDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(opts.InstallLocationDir, "install_location"), []byte(root+"\n"), 0o644))

	path, err := Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "host", "fxr", "8.0.0", LibraryName()), path)
}

func TestLocateNotFound(t *testing.T) {
	opts := isolated(t)
	opts.DotnetRoot = t.TempDir()

	_, err := Locate(opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLibraryNotFound))
	assert.Contains(t, err.Error(), opts.DotnetRoot)
}

func TestRootsDeduplicates(t *testing.T) {
	root := t.TempDir()
	opts := isolated(t)
	opts.DotnetRoot = root
	opts.Getenv = func(k string) string {
		if k == "DOTNET_ROOT" {
			return root + string(filepath.Separator)
		}
		return ""
	}
	opts.DefaultRoots = []string{root}

	roots := Roots(opts)
	require.Len(t, roots, 1)
	assert.Equal(t, "option", roots[0].Source)
}

func upperArch() string {
	return strings.ToUpper(archName())
}

func TestCandidateLibrary(t *testing.T) {
	root := t.TempDir()
	makeRoot(t, root, "7.0.0", "8.0.4")

	path, ok := Candidate{Root: root}.Library()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "host", "fxr", "8.0.4", LibraryName()), path)

	_, ok = Candidate{Root: t.TempDir()}.Library()
	assert.False(t, ok)
}
