package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{-3, 10, 1},
		{5, 0, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.total, tt.pageSize), "total=%d size=%d", tt.total, tt.pageSize)
	}
}

func TestPageCount_MatchesCeilFormula(t *testing.T) {
	for pageSize := 1; pageSize <= 7; pageSize++ {
		for total := 0; total <= 50; total++ {
			want := 1
			if total > 0 {
				want = (total + pageSize - 1) / pageSize
			}
			assert.Equal(t, want, PageCount(total, pageSize))
			assert.GreaterOrEqual(t, PageCount(total, pageSize), 1)
		}
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 1, ClampPage(-5, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 3, ClampPage(99, 3))
	assert.Equal(t, 1, ClampPage(4, 0))
}

func TestWindow(t *testing.T) {
	offset, limit := Window(3, 20)
	assert.Equal(t, 40, offset)
	assert.Equal(t, 20, limit)

	offset, limit = Window(-1, 0)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 1, limit)
}

func TestNewPage_EmptyItemsNotNil(t *testing.T) {
	p := NewPage[int](nil, 1, 10, 0)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 1, p.PageCount)
}
