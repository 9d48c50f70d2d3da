package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomStaysWithinCategory(t *testing.T) {
	members := map[string]bool{}
	for _, w := range lists["Foods"] {
		members[w] = true
	}
	for i := 0; i < 100; i++ {
		assert.True(t, members[Random("Foods")])
	}
}

func TestRandomUnknownCategoryFallsBack(t *testing.T) {
	members := map[string]bool{}
	for _, w := range defaultList {
		members[w] = true
	}
	for i := 0; i < 100; i++ {
		assert.True(t, members[Random("No Such Category")])
	}
}

func TestCategoriesAreNonEmpty(t *testing.T) {
	names := Categories()
	assert.NotEmpty(t, names)
	for _, name := range names {
		assert.NotEmpty(t, lists[name], "category %s has no words", name)
	}
}
