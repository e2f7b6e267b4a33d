package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 28.6139, lon1: 77.2090,
			lat2: 28.6139, lon2: 77.2090,
			expected:  0,
			tolerance: 1e-9,
		},
		{
			name: "connaught place to noida",
			lat1: 28.6139, lon1: 77.2090,
			lat2: 28.5355, lon2: 77.3910,
			expected:  19.9,
			tolerance: 0.5,
		},
		{
			name: "delhi to gurgaon",
			lat1: 28.7041, lon1: 77.1025,
			lat2: 28.4595, lon2: 77.0266,
			expected:  28.2,
			tolerance: 0.5,
		},
		{
			name: "delhi to mumbai",
			lat1: 28.7041, lon1: 77.1025,
			lat2: 19.0760, lon2: 72.8777,
			expected:  1153,
			tolerance: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	forward := Haversine(28.7041, 77.1025, 19.0760, 72.8777)
	reverse := Haversine(19.0760, 72.8777, 28.7041, 77.1025)
	assert.InDelta(t, forward, reverse, 1e-9)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 12.35, RoundKm(12.345001))
	assert.Equal(t, 12.34, RoundKm(12.344999))
	assert.Equal(t, 0.0, RoundKm(0))
}
