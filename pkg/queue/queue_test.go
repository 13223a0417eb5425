package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/upshift/pkg/periph"
)

func fill(t *testing.T, q *Queue, units ...periph.Unit) {
	for _, u := range units {
		require.NoError(t, q.Enqueue(u))
	}
}

func drain(q *Queue) (units []periph.Unit) {
	for {
		u, ok := q.Dequeue()
		if !ok {
			return
		}
		units = append(units, u)
	}
}

func TestEmpty(t *testing.T) {
	q := New()
	require.True(t, q.IsEmpty())
	require.Equal(t, 0, q.Len())
	require.Equal(t, Capacity, q.Cap())
	_, ok := q.Dequeue()
	require.False(t, ok)
	_, ok = q.Dequeue()
	require.False(t, ok)
	require.Equal(t, 0, q.Len())
}

func TestFIFOOrder(t *testing.T) {
	q := New()
	fill(t, q, 65, 66, 67)
	require.False(t, q.IsEmpty())
	require.Equal(t, 3, q.Len())
	require.Equal(t, []periph.Unit{65, 66, 67}, drain(q))
	require.True(t, q.IsEmpty())
}

func TestCapacity(t *testing.T) {
	q := New()
	fill(t, q, 1, 2, 3, 4, 5, 6, 7, 8)
	require.Equal(t, Capacity, q.Len())
	before := q.Units()

	require.Equal(t, ErrFull, q.Enqueue(9))
	require.Equal(t, Capacity, q.Len())
	require.Equal(t, before, q.Units())
	require.Equal(t, []periph.Unit{1, 2, 3, 4, 5, 6, 7, 8}, drain(q))
}

func TestWrapAround(t *testing.T) {
	q := New()
	var expected []periph.Unit
	next := periph.Unit(0)
	// interleave so head/tail cross the end of the ring several times.
	for round := 0; round < 5; round++ {
		for i := 0; i < 5; i++ {
			require.NoError(t, q.Enqueue(next))
			next++
		}
		for i := 0; i < 3; i++ {
			u, ok := q.Dequeue()
			require.True(t, ok)
			expected = append(expected, u)
		}
		if q.Len() > Capacity-5 {
			expected = append(expected, drain(q)...)
		}
		require.True(t, q.Len() >= 0 && q.Len() <= Capacity)
	}
	expected = append(expected, drain(q)...)
	require.Len(t, expected, int(next))
	for n, u := range expected {
		require.Equal(t, periph.Unit(n), u)
	}
}

func TestRejectNewest(t *testing.T) {
	q := New()
	fill(t, q, 10, 11, 12, 13, 14, 15, 16, 17)
	u, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, periph.Unit(10), u)
	require.NoError(t, q.Enqueue(18))
	require.Equal(t, ErrFull, q.Enqueue(19))
	require.Equal(t, []periph.Unit{11, 12, 13, 14, 15, 16, 17, 18}, q.Units())
}
