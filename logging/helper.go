package logging

import (
	"io"
)

// Settings 对应设置文件中的 logging 节
type Settings struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text | json
	File   string `json:"file" yaml:"file"`
	Color  *bool  `json:"color" yaml:"color"`
}

// NewFactory 根据 Settings 构建日志工厂
// 控制台输出写到 out（nil 时为 stderr，避免与被托管程序的 stdout 混在一起）
func NewFactory(s Settings, out io.Writer) (LoggerFactory, error) {
	builder := NewLoggingBuilder()
	if err := builder.Configure(s, out); err != nil {
		return nil, err
	}
	return builder.Build(), nil
}
