package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_InBounds(t *testing.T) {
	p := &Product{MinPrice: 200, MaxPrice: 500}

	assert.True(t, p.InBounds(200))
	assert.True(t, p.InBounds(350))
	assert.True(t, p.InBounds(500))
	assert.False(t, p.InBounds(199))
	assert.False(t, p.InBounds(501))
}


func TestValidCategory(t *testing.T) {
	for _, c := range []string{"coffee", "Cocktails", "Beer & Cider", "tea/infusions", "2-for-1"} {
		assert.True(t, ValidCategory(c), c)
	}
	for _, c := range []string{"", " coffee", "-sale", "snacks!", "<script>", strings.Repeat("a", 51)} {
		assert.False(t, ValidCategory(c), c)
	}
}
