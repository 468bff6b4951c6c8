package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClamps(t *testing.T) {
	p := Normalize(0, 0, 10, 50)
	assert.Equal(t, Page{Number: 1, Size: 10}, p)

	p = Normalize(3, 500, 10, 50)
	assert.Equal(t, Page{Number: 3, Size: 50}, p)

	p = Normalize(-2, 20, 10, 50)
	assert.Equal(t, Page{Number: 1, Size: 20}, p)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, Size: 10}.Offset())
	assert.Equal(t, 20, Page{Number: 3, Size: 10}.Offset())
}

func TestSlicePartitionsWithoutOverlap(t *testing.T) {
	items := make([]int, 15)
	for i := range items {
		items[i] = i
	}

	page1 := Slice(items, Page{Number: 1, Size: 10})
	page2 := Slice(items, Page{Number: 2, Size: 10})
	page3 := Slice(items, Page{Number: 3, Size: 10})

	assert.Len(t, page1, 10)
	assert.Len(t, page2, 5)
	assert.Empty(t, page3)

	seen := map[int]bool{}
	for _, v := range append(page1, page2...) {
		assert.False(t, seen[v], "item %d appears twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, 15)
}
