package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsConfigIsValid(t *testing.T) {
	require.NoError(t, validateWeightsConfig(DefaultWeightsConfig()))
}

func TestValidateWeightsConfig(t *testing.T) {
	cases := []struct {
		name       string
		categories map[string]float64
		wantErr    bool
	}{
		{"sums to one", map[string]float64{"steel": 0.6, "wood": 0.4}, false},
		{"rounding tolerance", map[string]float64{"a": 0.3333, "b": 0.3333, "c": 0.3334}, false},
		{"sums below one", map[string]float64{"steel": 0.5, "wood": 0.2}, true},
		{"sums above one", map[string]float64{"steel": 0.8, "wood": 0.4}, true},
		{"negative weight", map[string]float64{"steel": 1.2, "wood": -0.2}, true},
		{"empty", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateWeightsConfig(WeightsConfig{Categories: tc.categories})
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStaticWeightsHolder(t *testing.T) {
	cfg := WeightsConfig{Categories: map[string]float64{"steel": 1.0}}
	holder := NewStaticWeightsHolder(cfg)
	assert.Equal(t, 1.0, holder.Get().Categories["steel"])
}
