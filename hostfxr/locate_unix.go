//go:build !windows

package hostfxr

import (
	"path/filepath"
	"runtime"
)

var libraryName = func() string {
	if runtime.GOOS == "darwin" {
		return "libhostfxr.dylib"
	}
	return "libhostfxr.so"
}()

// installLocations /etc/dotnet/install_location_<arch> 优先于 install_location
func installLocations(opts LocateOptions, arch string) []Candidate {
	dir := opts.InstallLocationDir
	if dir == "" {
		dir = "/etc/dotnet"
	}

	var out []Candidate
	for _, name := range []string{"install_location_" + arch, "install_location"} {
		path := filepath.Join(dir, name)
		if root := readInstallLocation(path); root != "" {
			out = append(out, Candidate{Root: root, Source: path})
		}
	}
	return out
}

func defaultRoots(getenv func(string) string) []string {
	if runtime.GOOS == "darwin" {
		if runtime.GOARCH == "amd64" {
			// Apple Silicon 上的 x64 仿真安装位置
			return []string{"/usr/local/share/dotnet/x64", "/usr/local/share/dotnet"}
		}
		return []string{"/usr/local/share/dotnet"}
	}
	return []string{"/usr/share/dotnet", "/usr/lib/dotnet", "/usr/lib64/dotnet"}
}
