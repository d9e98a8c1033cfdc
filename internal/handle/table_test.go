package handle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct{ n int }

func TestTable_InsertGetRemove(t *testing.T) {
	tbl := NewTable[entry]("entry", true)

	h := tbl.Insert(&entry{n: 1})
	require.NotZero(t, h)
	assert.Equal(t, 1, tbl.Live())

	tbl.Get(h).n = 2
	assert.Equal(t, 2, tbl.Get(h).n)

	e := tbl.Remove(h)
	require.NotNil(t, e)
	assert.Equal(t, 2, e.n)
	assert.Equal(t, 0, tbl.Live())

	allocated, released := tbl.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(1), released)
}

func TestTable_HandlesAreNotReused(t *testing.T) {
	tbl := NewTable[entry]("entry", false)
	a := tbl.Insert(&entry{})
	tbl.Remove(a)
	b := tbl.Insert(&entry{})
	assert.NotEqual(t, a, b)

	assert.Nil(t, tbl.Get(a))
}

func TestTable_CheckedPanicsOnContractViolation(t *testing.T) {
	tbl := NewTable[entry]("header", true)
	h := tbl.Insert(&entry{})
	tbl.Remove(h)

	assert.PanicsWithValue(t, "handle: use of null header handle", func() { tbl.Get(0) })
	assert.Panics(t, func() { tbl.Get(h) })
	assert.Panics(t, func() { tbl.Remove(h) })
}

func TestTable_UncheckedReturnsNil(t *testing.T) {
	tbl := NewTable[entry]("header", false)
	assert.Nil(t, tbl.Get(42))
	assert.Nil(t, tbl.Remove(42))

	_, released := tbl.Stats()
	assert.Equal(t, int64(0), released)
}

func TestTable_ConcurrentInsertRemove(t *testing.T) {
	tbl := NewTable[entry]("entry", true)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := tbl.Insert(&entry{n: i})
				assert.Equal(t, i, tbl.Get(h).n)
				tbl.Remove(h)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, tbl.Live())
	allocated, released := tbl.Stats()
	assert.Equal(t, int64(1600), allocated)
	assert.Equal(t, allocated, released)
}
