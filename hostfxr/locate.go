package hostfxr

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/coreos/go-semver/semver"
)

// ErrLibraryNotFound 所有候选位置都找不到 hostfxr
var ErrLibraryNotFound = errors.New("hostfxr: library not found")

// LocateOptions 查找 hostfxr 的选项
type LocateOptions struct {
	// AssemblyPath 应用程序集路径；其所在目录中的 hostfxr 优先（自包含发布）
	AssemblyPath string
	// DotnetRoot 显式指定的安装根目录，优先于环境变量
	DotnetRoot string

	// 以下字段主要用于测试
	Getenv             func(string) string
	InstallLocationDir string
	DefaultRoots       []string
}

// Candidate 一个被检查过的安装根目录
type Candidate struct {
	Root   string
	Source string
}

// Library 返回该根目录中版本最高的 hostfxr
func (c Candidate) Library() (string, bool) {
	return findInRoot(c.Root)
}

// LibraryName 当前平台的 hostfxr 文件名
func LibraryName() string {
	return libraryName
}

// Locate 按 nethost 的规则查找 hostfxr：
//  1. 程序集目录中的 hostfxr（自包含应用）
//  2. LocateOptions.DotnetRoot
//  3. DOTNET_ROOT_<ARCH>、DOTNET_ROOT 环境变量
//  4. 注册的安装位置（Unix: /etc/dotnet/install_location，Windows: 注册表）
//  5. 默认安装目录
//
// 在安装根目录中取 host/fxr 下版本号最高且包含库文件的目录。
func Locate(opts LocateOptions) (string, error) {
	if opts.AssemblyPath != "" {
		appLocal := filepath.Join(filepath.Dir(opts.AssemblyPath), libraryName)
		if fileExists(appLocal) {
			return appLocal, nil
		}
	}

	candidates := Roots(opts)
	for _, c := range candidates {
		if path, ok := findInRoot(c.Root); ok {
			return path, nil
		}
	}

	searched := make([]string, 0, len(candidates))
	for _, c := range candidates {
		searched = append(searched, fmt.Sprintf("%s (%s)", c.Root, c.Source))
	}
	return "", fmt.Errorf("%w: searched %s", ErrLibraryNotFound, strings.Join(searched, ", "))
}

// Roots 按优先级返回候选安装根目录（去重，不检查是否存在）
func Roots(opts LocateOptions) []Candidate {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var out []Candidate
	seen := make(map[string]bool)
	add := func(root, source string) {
		root = strings.TrimSpace(root)
		if root == "" {
			return
		}
		root = filepath.Clean(root)
		if seen[root] {
			return
		}
		seen[root] = true
		out = append(out, Candidate{Root: root, Source: source})
	}

	add(opts.DotnetRoot, "option")

	arch := archName()
	add(getenv("DOTNET_ROOT_"+strings.ToUpper(arch)), "DOTNET_ROOT_"+strings.ToUpper(arch))
	if runtime.GOOS == "windows" && runtime.GOARCH == "386" {
		add(getenv("DOTNET_ROOT(x86)"), "DOTNET_ROOT(x86)")
	}
	add(getenv("DOTNET_ROOT"), "DOTNET_ROOT")

	for _, loc := range installLocations(opts, arch) {
		add(loc.Root, loc.Source)
	}

	defaults := opts.DefaultRoots
	if defaults == nil {
		defaults = defaultRoots(getenv)
	}
	for _, root := range defaults {
		add(root, "default")
	}

	return out
}

// findInRoot 在 <root>/host/fxr/<version>/ 中查找库文件，取最高版本
func findInRoot(root string) (string, bool) {
	fxrDir := filepath.Join(root, "host", "fxr")
	entries, err := os.ReadDir(fxrDir)
	if err != nil {
		return "", false
	}

	type versioned struct {
		version *semver.Version
		path    string
	}
	var found []versioned
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := semver.NewVersion(entry.Name())
		if err != nil {
			continue
		}
		path := filepath.Join(fxrDir, entry.Name(), libraryName)
		if !fileExists(path) {
			continue
		}
		found = append(found, versioned{version: v, path: path})
	}
	if len(found) == 0 {
		return "", false
	}

	sort.Slice(found, func(i, j int) bool {
		return found[j].version.LessThan(*found[i].version)
	})
	return found[0].path, true
}

// readInstallLocation 读取 install_location 文件的第一行
func readInstallLocation(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

// archName dotnet 使用的架构名
func archName() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	default:
		// arm64、arm、s390x、ppc64le、loongarch64、riscv64 与 dotnet 命名一致
		return runtime.GOARCH
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
