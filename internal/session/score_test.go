package session_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/studyflash/internal/session"
)

func TestRound2(t *testing.T) {
	tests := map[float64]float64{
		0:       0,
		1.234:   1.23,
		1.235:   1.24,
		2.5:     2.5,
		9.999:   10,
		33.3333: 33.33,
		0.125:   0.13,
	}
	for in, want := range tests {
		assert.Equal(t, want, session.Round2(in), "Round2(%v)", in)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, session.ClampScore(-1))
	assert.Equal(t, 10.0, session.ClampScore(10.01))
	assert.Equal(t, 4.2, session.ClampScore(4.2))
	assert.Equal(t, 0.0, session.ClampScore(math.NaN()))
	assert.Equal(t, 10.0, session.ClampScore(math.Inf(1)))
}
