package config

import "errors"

// Load 加载并绑定指定节的配置到结构体 T
// section 为空时绑定整个配置
func Load[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}

// LoadOrDefault 与 Load 相同，但节不存在时返回 def 而不是错误
// def 中的值会作为默认值，被配置中存在的字段覆盖
func LoadOrDefault[T any](cfg Configuration, section string, def T) (T, error) {
	t := def
	if err := cfg.Bind(section, &t); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return def, nil
		}
		return def, err
	}
	return t, nil
}
