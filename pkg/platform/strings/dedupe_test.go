package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Empty(t, DedupeAndTrim(nil))
	assert.Equal(t, []string{"foo", "bar"},
		DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
}

func TestContains(t *testing.T) {
	links := []string{"https://gigs.example/a", " https://gigs.example/b "}
	assert.True(t, Contains(links, "https://gigs.example/b"))
	assert.False(t, Contains(links, "https://gigs.example/c"))
}
