package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	london = Point{Lat: 51.5074, Lng: -0.1278}
	paris  = Point{Lat: 48.8566, Lng: 2.3522}
)

func TestHaversine(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.InDelta(t, 0, HaversineKm(london, london), 1e-9)
	})

	t.Run("london to paris is about 344km", func(t *testing.T) {
		assert.InDelta(t, 343.5, HaversineKm(london, paris), 1.5)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, HaversineKm(london, paris), HaversineKm(paris, london), 1e-9)
	})

	t.Run("metres scale kilometres", func(t *testing.T) {
		assert.InDelta(t, HaversineKm(london, paris)*1000, HaversineMeters(london, paris), 1e-6)
	})

	t.Run("one degree of latitude is about 111km", func(t *testing.T) {
		assert.InDelta(t, 111.19, HaversineKm(Point{0, 0}, Point{1, 0}), 0.05)
	})
}

func TestWithinKm(t *testing.T) {
	assert.True(t, WithinKm(london, paris, 400))
	assert.False(t, WithinKm(london, paris, 300))
	assert.True(t, WithinKm(london, london, 0))
}
