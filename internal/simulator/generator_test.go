package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStaysInRange(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 50; i++ {
		v := g.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.3))
	assert.Equal(t, 1.0, clamp01(1.8))
	assert.Equal(t, 0.5, clamp01(0.5))
}
