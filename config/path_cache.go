package config

import (
	"strings"
	"sync"
)

// PathCache 缓存配置路径解析结果
type PathCache struct {
	cache sync.Map
}

// GetPathSegments 将路径拆分为小写片段
// : 和 . 都是分隔符，"Host:DotnetRoot" 与 "host.dotnetroot" 得到相同的 [host dotnetroot]
func (c *PathCache) GetPathSegments(path string) []string {
	if v, ok := c.cache.Load(path); ok {
		return v.([]string)
	}

	parts := strings.FieldsFunc(strings.ToLower(path), func(r rune) bool {
		return r == ':' || r == '.'
	})
	v, _ := c.cache.LoadOrStore(path, parts)
	return v.([]string)
}

var globalPathCache = &PathCache{}
