package config

import (
	"fmt"

	"github.com/gocrud/nethost/core"
)

// Use 构建配置并注册为 Runtime Feature
// 之后可通过 core.GetFeature[config.Configuration](rt) 获取
func Use(builder *ConfigurationBuilder) core.Option {
	return func(rt *core.Runtime) error {
		cfg, err := builder.Build()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		core.SetFeature[Configuration](rt, cfg)
		return nil
	}
}

// Bind 将配置节绑定到结构体并注册为 Runtime Feature
func Bind[T any](rt *core.Runtime, section string) (T, error) {
	var zero T
	cfg := core.GetFeature[Configuration](rt)
	if cfg == nil {
		return zero, fmt.Errorf("config: configuration is not registered")
	}

	settings, err := Load[T](cfg, section)
	if err != nil {
		return zero, fmt.Errorf("config: failed to bind section '%s': %w", section, err)
	}

	core.SetFeature[T](rt, settings)
	return settings, nil
}
