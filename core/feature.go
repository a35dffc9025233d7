package core

import (
	"reflect"
	"sync"
)

// FeatureCollection 是一个类型安全的特性集合
// 用于存放 Configuration、Settings 等构建时特性
type FeatureCollection struct {
	features sync.Map
}

// Set 以 typ 为键注册一个特性
func (fc *FeatureCollection) Set(typ reflect.Type, feature any) {
	fc.features.Store(typ, feature)
}

// Get 获取一个特性
func (fc *FeatureCollection) Get(typ reflect.Type) (any, bool) {
	return fc.features.Load(typ)
}

// SetFeature 以 T 为键注册特性
// T 为接口时键是接口类型本身，而不是 feature 的动态类型
func SetFeature[T any](rt *Runtime, feature T) {
	rt.Features.Set(reflect.TypeOf((*T)(nil)).Elem(), feature)
}

// GetFeature 泛型辅助函数，从 Runtime 获取特性，不存在时返回零值
func GetFeature[T any](rt *Runtime) T {
	var zero T
	targetType := reflect.TypeOf((*T)(nil)).Elem()

	if val, ok := rt.Features.Get(targetType); ok {
		return val.(T)
	}
	return zero
}
