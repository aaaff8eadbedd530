package geo_test

import (
	"testing"

	"go-school/internal/geo"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	fence := geo.Fence{Center: geo.Point{Latitude: 0, Longitude: 0}, RadiusMeters: 100}

	t.Run("same point is inside with zero distance", func(t *testing.T) {
		got := geo.Evaluate(geo.Point{Latitude: 0, Longitude: 0}, fence)

		assert.True(t, got.Inside)
		assert.Equal(t, 0.0, got.DistanceMeters)
	})

	t.Run("one degree of longitude on the equator is outside", func(t *testing.T) {
		got := geo.Evaluate(geo.Point{Latitude: 0, Longitude: 1}, fence)

		assert.False(t, got.Inside)
		assert.InDelta(t, 111195, got.DistanceMeters, 10)
	})

	t.Run("point on the boundary is inside", func(t *testing.T) {
		edge := geo.Point{Latitude: 12.9716, Longitude: 77.5946}
		center := geo.Point{Latitude: 12.9720, Longitude: 77.5946}
		d := geo.DistanceMeters(edge, center)

		got := geo.Evaluate(edge, geo.Fence{Center: center, RadiusMeters: d})

		assert.True(t, got.Inside)
	})

	t.Run("nearby point within radius", func(t *testing.T) {
		center := geo.Point{Latitude: 12.9716, Longitude: 77.5946}
		near := geo.Point{Latitude: 12.9721, Longitude: 77.5946}

		got := geo.Evaluate(near, geo.Fence{Center: center, RadiusMeters: 100})

		assert.True(t, got.Inside)
		assert.InDelta(t, 55.6, got.DistanceMeters, 1)
	})
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := geo.Point{Latitude: 51.5007, Longitude: -0.1246}
	b := geo.Point{Latitude: 40.6892, Longitude: -74.0445}

	assert.InDelta(t, geo.DistanceMeters(a, b), geo.DistanceMeters(b, a), 1e-6)
	assert.InDelta(t, 5574840, geo.DistanceMeters(a, b), 5000)
}

func TestPointAndFenceValidate(t *testing.T) {
	assert.NoError(t, geo.Point{Latitude: 90, Longitude: -180}.Validate())
	assert.ErrorIs(t, geo.Point{Latitude: 90.5}.Validate(), geo.ErrInvalidLatitude)
	assert.ErrorIs(t, geo.Point{Longitude: 181}.Validate(), geo.ErrInvalidLongitude)

	assert.NoError(t, geo.Fence{RadiusMeters: 50}.Validate())
	assert.ErrorIs(t, geo.Fence{RadiusMeters: 0}.Validate(), geo.ErrInvalidRadius)
	assert.ErrorIs(t, geo.Fence{RadiusMeters: -5}.Validate(), geo.ErrInvalidRadius)
	assert.ErrorIs(t, geo.Fence{Center: geo.Point{Latitude: -91}, RadiusMeters: 5}.Validate(), geo.ErrInvalidLatitude)
}
