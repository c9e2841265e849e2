package maps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func leg(meters int, d time.Duration) *maps.Leg {
	return &maps.Leg{Distance: maps.Distance{Meters: meters}, Duration: d}
}

func TestCandidatesFromRoutes(t *testing.T) {
	routes := []maps.Route{
		{Summary: "M62", Legs: []*maps.Leg{leg(70500, 75*time.Minute)}},
		{Summary: "A58 and A640", Legs: []*maps.Leg{leg(30000, 50*time.Minute), leg(30000, 60*time.Minute)}},
		{Legs: []*maps.Leg{leg(1000, 90*time.Second)}},
	}
	got := candidatesFromRoutes(routes, []string{" m62 "})
	require.Len(t, got, 3)

	assert.Equal(t, "0", got[0].ID)
	assert.Equal(t, 70.5, got[0].Distance)
	assert.Equal(t, 75.0, got[0].Duration)
	assert.True(t, got[0].PartnerRoute)
	assert.Nil(t, got[0].BasePrice)

	assert.Equal(t, 60.0, got[1].Distance)
	assert.Equal(t, 110.0, got[1].Duration)
	assert.False(t, got[1].PartnerRoute)

	assert.Equal(t, "Route 3", got[2].Label)
	assert.Equal(t, 1.5, got[2].Duration)
}

func TestOnCorridor(t *testing.T) {
	assert.False(t, onCorridor("M62", nil))
	assert.False(t, onCorridor("M62", []string{""}))
	assert.True(t, onCorridor("M6 Toll and M42", []string{"m6 toll"}))
}
