//go:build windows

package hostfxr

import (
	"path/filepath"
	"runtime"

	"golang.org/x/sys/windows/registry"
)

const libraryName = "hostfxr.dll"

// installLocations HKLM\SOFTWARE\dotnet\Setup\InstalledVersions\<arch>\InstallLocation
// InstallLocationDir 非空时（测试）改为读取 install_location 文件
func installLocations(opts LocateOptions, arch string) []Candidate {
	if opts.InstallLocationDir != "" {
		path := filepath.Join(opts.InstallLocationDir, "install_location")
		if root := readInstallLocation(path); root != "" {
			return []Candidate{{Root: root, Source: path}}
		}
		return nil
	}

	keyPath := `SOFTWARE\dotnet\Setup\InstalledVersions\` + arch
	access := uint32(registry.QUERY_VALUE | registry.WOW64_32KEY)
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, access)
	if err != nil {
		return nil
	}
	defer key.Close()

	root, _, err := key.GetStringValue("InstallLocation")
	if err != nil || root == "" {
		return nil
	}
	return []Candidate{{Root: root, Source: `HKLM\` + keyPath}}
}

func defaultRoots(getenv func(string) string) []string {
	programFiles := getenv("ProgramFiles")
	if runtime.GOARCH == "386" {
		if x86 := getenv("ProgramFiles(x86)"); x86 != "" {
			programFiles = x86
		}
	}
	if programFiles == "" {
		return nil
	}
	return []string{filepath.Join(programFiles, "dotnet")}
}
