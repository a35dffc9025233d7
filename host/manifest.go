package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocrud/nethost/config"
	"github.com/gocrud/nethost/logging"
)

// DefaultManifestName 工作目录中默认的清单文件名
const DefaultManifestName = "net-host.json"

// DefaultMethodName methodName 缺省值
const DefaultMethodName = "Main"

var (
	// ErrManifestInvalid 清单内容不合法
	ErrManifestInvalid = errors.New("host: invalid manifest")
	// ErrManifestNotFound 清单文件无法打开
	ErrManifestNotFound = errors.New("host: cannot open manifest")
)

// Manifest net-host.json 中描述的待启动应用
// 加载后不再修改
type Manifest struct {
	// AssemblyPath 应用程序集路径，相对路径基于工作目录
	AssemblyPath string `json:"assemblyPath"`
	// TypeName 入口类型（组件模式下需为程序集限定名）
	TypeName string `json:"typeName"`
	// MethodName 入口方法，默认 Main
	MethodName string `json:"methodName"`
	// Arguments 传给应用的命令行参数
	Arguments []string `json:"arguments"`
	// DelegateTypeName 组件模式下的委托类型；为空使用 ComponentEntryPoint，
	// "UnmanagedCallersOnly" 表示方法标注了 [UnmanagedCallersOnly]
	DelegateTypeName string `json:"delegateTypeName,omitempty"`
}

// LoadManifest 读取并校验清单
func LoadManifest(path string) (*Manifest, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestNotFound, path, err)
	}

	cfg, err := config.NewConfigurationBuilder().AddJsonFile(path).Build()
	if err != nil {
		return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrManifestInvalid, err)
	}

	var m Manifest
	if err := cfg.Bind("", &m); err != nil {
		return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrManifestInvalid, err)
	}

	if m.MethodName == "" {
		m.MethodName = DefaultMethodName
	}
	if m.Arguments == nil {
		m.Arguments = []string{}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate assemblyPath 与 typeName 为必填
func (m *Manifest) Validate() error {
	if m.AssemblyPath == "" || m.TypeName == "" {
		return fmt.Errorf("%w: assemblyPath and typeName are required", ErrManifestInvalid)
	}
	return nil
}

// Resolve 返回程序集的绝对路径
// 相对路径基于 workDir，绝对路径原样返回
func (m *Manifest) Resolve(workDir string) string {
	if filepath.IsAbs(m.AssemblyPath) {
		return filepath.Clean(m.AssemblyPath)
	}
	return filepath.Join(workDir, m.AssemblyPath)
}

// CommandLine 模拟 "dotnet <assembly> <args...>"：程序集路径后跟清单参数
func (m *Manifest) CommandLine(assembly string) []string {
	args := make([]string, 0, len(m.Arguments)+1)
	args = append(args, assembly)
	args = append(args, m.Arguments...)
	return args
}

// LogSummary 输出清单摘要
func (m *Manifest) LogSummary(logger logging.Logger) {
	logger.Info("Configuration loaded successfully",
		logging.Field{Key: "assembly", Value: m.AssemblyPath},
		logging.Field{Key: "type", Value: m.TypeName},
		logging.Field{Key: "method", Value: m.MethodName},
		logging.Field{Key: "arguments", Value: len(m.Arguments)})
}
