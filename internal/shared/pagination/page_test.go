package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequest_Normalize(t *testing.T) {
	assert.Equal(t, Request{Page: 1, PageSize: DefaultPageSize}, Request{}.Normalize())
	assert.Equal(t, Request{Page: 3, PageSize: MaxPageSize}, Request{Page: 3, PageSize: 500}.Normalize())
	assert.Equal(t, 20, Request{Page: 3, PageSize: 10}.Offset())
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	page := Slice(all, Request{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, int64(5), page.Total)
	assert.True(t, page.HasNext())

	last := Slice(all, Request{Page: 3, PageSize: 2})
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.HasNext())

	beyond := Slice(all, Request{Page: 9, PageSize: 2})
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
}

func TestMap(t *testing.T) {
	page := Map(Slice([]int{1, 2}, Request{}), func(i int) string { return string(rune('a' + i - 1)) })
	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.Equal(t, int64(2), page.Total)
}
