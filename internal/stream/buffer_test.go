package stream

import (
	"testing"

	"healthguard-console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(id int) models.VitalReading {
	return models.VitalReading{ID: id}
}

func TestBuffer_AppendBelowCapacity(t *testing.T) {
	b := NewBuffer(3)
	b.Append(reading(1))
	b.Append(reading(2))

	assert.Equal(t, 2, b.Len())
	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, 1, snap[0].ID)
	assert.Equal(t, 2, snap[1].ID)
}

func TestBuffer_EvictsOldestAtCapacity(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Append(reading(i))
	}

	// 严格 FIFO：保留最后 3 条，按到达顺序
	assert.Equal(t, 3, b.Len())
	snap := b.Snapshot()
	assert.Equal(t, []int{3, 4, 5}, []int{snap[0].ID, snap[1].ID, snap[2].ID})
}

func TestBuffer_LengthNeverExceedsCapacity(t *testing.T) {
	// 对任意容量 N ≥ 1：任意到达序列后长度 ≤ N，
	// 内容等于最后 min(N, 总数) 条，按到达顺序
	for _, capacity := range []int{1, 2, 7, 60} {
		for _, arrivals := range []int{0, 1, capacity, capacity + 1, capacity * 3} {
			b := NewBuffer(capacity)
			for i := 1; i <= arrivals; i++ {
				b.Append(reading(i))
			}

			want := arrivals
			if want > capacity {
				want = capacity
			}
			require.Equal(t, want, b.Len(), "capacity=%d arrivals=%d", capacity, arrivals)

			snap := b.Snapshot()
			for j, r := range snap {
				assert.Equal(t, arrivals-want+j+1, r.ID)
			}
		}
	}
}

func TestBuffer_CapacityOneKeepsNewest(t *testing.T) {
	b := NewBuffer(1)
	b.Append(reading(1))
	b.Append(reading(2))

	snap := b.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2, snap[0].ID)
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultCapacity, b.Capacity())

	b = NewBuffer(-5)
	assert.Equal(t, DefaultCapacity, b.Capacity())
}

func TestBuffer_SnapshotIsCopy(t *testing.T) {
	b := NewBuffer(3)
	b.Append(reading(1))

	snap := b.Snapshot()
	snap[0].ID = 99

	assert.Equal(t, 1, b.Snapshot()[0].ID)
}
