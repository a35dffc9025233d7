// Package nethost 将 .NET 应用作为托管服务运行在微内核之上
//
//	builder := nethost.NewConfigurationBuilder("nethost.yaml", nil)
//	err := nethost.Run(
//		config.Use(builder),
//		nethost.UseLogging(factory),
//		nethost.UseHost(),
//	)
package nethost

import (
	"context"
	"fmt"

	"github.com/gocrud/nethost/config"
	"github.com/gocrud/nethost/core"
	"github.com/gocrud/nethost/host"
	"github.com/gocrud/nethost/logging"
)

// EnvPrefix 环境变量前缀，NETHOST_HOST_DOTNETROOT 对应 host.dotnetRoot
const EnvPrefix = "NETHOST_"

// Settings 设置文件结构
type Settings struct {
	Host    HostSettings     `json:"host" yaml:"host"`
	Logging logging.Settings `json:"logging" yaml:"logging"`
}

// HostSettings host 节
type HostSettings struct {
	Manifest   string `json:"manifest" yaml:"manifest"`
	DotnetRoot string `json:"dotnetRoot" yaml:"dotnetRoot"`
	WorkDir    string `json:"workDir" yaml:"workDir"`
	Mode       string `json:"mode" yaml:"mode"`
}

// Options 转换为 host.Option
func (s HostSettings) Options() ([]host.Option, error) {
	mode, err := host.ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	return []host.Option{
		host.WithManifest(s.Manifest),
		host.WithWorkDir(s.WorkDir),
		host.WithDotnetRoot(s.DotnetRoot),
		host.WithMode(mode),
	}, nil
}

// NewConfigurationBuilder 按优先级从低到高组合设置来源：
// settingsFile (YAML，可为空) < NETHOST_ 环境变量 < overrides
// 键大小写不敏感
func NewConfigurationBuilder(settingsFile string, overrides map[string]any) *config.ConfigurationBuilder {
	builder := config.NewConfigurationBuilder()
	if settingsFile != "" {
		builder.AddYamlFile(settingsFile)
	}
	builder.AddEnvironmentVariables(EnvPrefix)
	if len(overrides) > 0 {
		builder.AddInMemory(overrides)
	}
	return builder
}

// LoadSettings 读取设置，缺少的节使用零值
func LoadSettings(cfg config.Configuration) (Settings, error) {
	var s Settings
	var err error
	if s.Host, err = config.LoadOrDefault(cfg, "host", HostSettings{}); err != nil {
		return s, fmt.Errorf("settings: host: %w", err)
	}
	if s.Logging, err = config.LoadOrDefault(cfg, "logging", logging.Settings{}); err != nil {
		return s, fmt.Errorf("settings: logging: %w", err)
	}
	return s, nil
}

// UseLogging 将日志工厂接入运行时，停止时关闭
// 应放在其他选项之前，使后续组件拿到同一个 Logger
func UseLogging(factory logging.LoggerFactory) core.Option {
	return func(rt *core.Runtime) error {
		if err := rt.Apply(core.WithLogger(factory.CreateLogger("Runtime"))); err != nil {
			return err
		}
		core.SetFeature(rt, factory)
		// 最先注册的 OnStop 最后执行
		rt.Lifecycle.OnStop(func(context.Context) error {
			return factory.Close()
		})
		return nil
	}
}

// UseHost 将 .NET 应用注册为托管服务，应用结束后运行时随之退出
// 设置取自 config.Use 注册的配置的 host 节
func UseHost(extra ...host.Option) core.Option {
	return func(rt *core.Runtime) error {
		s := HostSettings{}
		if cfg := core.GetFeature[config.Configuration](rt); cfg != nil {
			var err error
			if s, err = config.LoadOrDefault(cfg, "host", s); err != nil {
				return fmt.Errorf("UseHost: %w", err)
			}
		}
		core.SetFeature(rt, s)

		opts, err := s.Options()
		if err != nil {
			return fmt.Errorf("UseHost: %w", err)
		}
		opts = append(opts, host.WithLogger(rt.Logger.WithCategory("Host")))
		opts = append(opts, extra...)

		svc := host.NewService(host.New(opts...))
		core.SetFeature(rt, svc)
		return rt.Apply(core.WithHostedService(svc, core.Named("dotnet"), core.ShutdownOnExit()))
	}
}
