package stream

import "healthguard-console/internal/models"

// DefaultCapacity 流缓冲区默认容量
const DefaultCapacity = 60

// Buffer 有界 FIFO 读数缓冲区（最旧在前）
// 达到容量后追加新读数会淘汰最旧的一条；严格按到达顺序，不按时间戳重排
type Buffer struct {
	capacity int
	items    []models.VitalReading
}

// NewBuffer 创建缓冲区；capacity < 1 时使用默认容量
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		items:    make([]models.VitalReading, 0, capacity),
	}
}

// Append 追加一条读数，必要时淘汰最旧的一条
func (b *Buffer) Append(r models.VitalReading) {
	if len(b.items) == b.capacity {
		copy(b.items, b.items[1:])
		b.items = b.items[:len(b.items)-1]
	}
	b.items = append(b.items, r)
}

// Snapshot 返回当前全部内容的副本
func (b *Buffer) Snapshot() []models.VitalReading {
	out := make([]models.VitalReading, len(b.items))
	copy(out, b.items)
	return out
}

// Len 当前长度
func (b *Buffer) Len() int { return len(b.items) }

// Capacity 容量上限
func (b *Buffer) Capacity() int { return b.capacity }
