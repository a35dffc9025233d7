package logging

import (
	"bytes"
	"sync"
)

// maxPooledBuffer 超过该容量的 buffer 不归还，避免单条超长日志（例如 hostfxr 的解析跟踪）长期占用内存
const maxPooledBuffer = 64 << 10

// BufferPool 格式化用的 buffer 池
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool 创建缓冲池
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// Get 获取一个空 buffer
func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put 归还 buffer
func (p *BufferPool) Put(b *bytes.Buffer) {
	if b.Cap() > maxPooledBuffer {
		return
	}
	b.Reset()
	p.pool.Put(b)
}

// GlobalBufferPool 格式化器共用的缓冲池
var GlobalBufferPool = NewBufferPool()
