package school_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-school/internal/school"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotonGeocoder_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mg road", r.URL.Query().Get("q"))
		assert.Equal(t, "8", r.URL.Query().Get("limit"))
		assert.Equal(t, "74.0,11.5,78.5,18.5", r.URL.Query().Get("bbox"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[
			{"geometry":{"coordinates":[77.6094,12.9756]},"properties":{"name":"MG Road","city":"Bengaluru","state":"Karnataka","country":"India"}},
			{"geometry":{"coordinates":[77.5]},"properties":{"name":"broken"}},
			{"geometry":{"coordinates":[77.1,12.1]},"properties":{"street":"1st Cross"}}
		]}`))
	}))
	defer srv.Close()

	g := school.NewPhotonGeocoder(srv.URL, "74.0,11.5,78.5,18.5")

	got, err := g.Search(context.Background(), "mg road")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MG Road, Bengaluru, Karnataka, India", got[0].Label)
	assert.Equal(t, 12.9756, got[0].Latitude)
	assert.Equal(t, 77.6094, got[0].Longitude)
	assert.Equal(t, "1st Cross", got[1].Label)
}

func TestPhotonGeocoder_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := school.NewPhotonGeocoder(srv.URL, "").Search(context.Background(), "x y")

	assert.Error(t, err)
}
