package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbacksWaitForMarkLoaded(t *testing.T) {
	doc := New(true)
	var order []int
	doc.OnContentLoaded(func() { order = append(order, 1) })
	doc.OnContentLoaded(func() { order = append(order, 2) })

	assert.True(t, doc.Loading())
	assert.Equal(t, 2, doc.Pending())
	assert.Empty(t, order)

	doc.MarkLoaded()
	doc.MarkLoaded()
	assert.False(t, doc.Loading())
	assert.Equal(t, []int{1, 2}, order)
}

func TestReadyRunsImmediately(t *testing.T) {
	ran := false
	Ready().OnContentLoaded(func() { ran = true })
	assert.True(t, ran)
}
