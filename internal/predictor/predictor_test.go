package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDampedTrendExtrapolates(t *testing.T) {
	p := DampedTrend{Damping: 0.5}

	// Level 9, average step 1, damped by 0.5.
	v, err := p.PredictOne([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)
	assert.InDelta(t, 9.5, v, 1e-9)
}

func TestDampedTrendFlatWindow(t *testing.T) {
	p := DampedTrend{}

	v, err := p.PredictOne([]float64{20, 20, 20, 20})
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)
}

func TestDampedTrendSingleValue(t *testing.T) {
	p := DampedTrend{}

	v, err := p.PredictOne([]float64{17.5})
	require.NoError(t, err)
	assert.Equal(t, 17.5, v)
}

func TestDampedTrendEmptyWindow(t *testing.T) {
	p := DampedTrend{}

	_, err := p.PredictOne(nil)
	assert.Error(t, err)
}

func TestPersistenceRepeatsLastValue(t *testing.T) {
	p := Persistence{}

	v, err := p.PredictOne([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = p.PredictOne(nil)
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	p, err := ByName("", 0.8)
	require.NoError(t, err)
	assert.IsType(t, DampedTrend{}, p)

	p, err = ByName("persistence", 0)
	require.NoError(t, err)
	assert.IsType(t, Persistence{}, p)

	_, err = ByName("lstm", 0)
	assert.Error(t, err)
}
