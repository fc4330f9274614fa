package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForBook_Deterministic(t *testing.T) {
	c1, a1 := ForBook("sai-gon-xua")
	c2, a2 := ForBook("sai-gon-xua")

	assert.Equal(t, c1, c2)
	assert.Equal(t, a1, a2)
	assert.True(t, Valid(c1), c1)
	assert.True(t, Valid(a1), a1)
	assert.NotEqual(t, c1, a1)
}

func TestHSLToRGB(t *testing.T) {
	r, g, b := hslToRGB(0, 1, 0.5)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})

	r, g, b = hslToRGB(120, 0, 0.5)
	assert.Equal(t, [3]uint8{128, 128, 128}, [3]uint8{r, g, b})
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("#1A2B3C"))
	assert.True(t, Valid("#abcdef"))
	assert.False(t, Valid("1A2B3C"))
	assert.False(t, Valid("#12345"))
	assert.False(t, Valid("#GG0000"))
}
