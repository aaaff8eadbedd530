package school

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

//go:generate mockgen -source=geocoder.go -destination=mock/geocoder_mock.go -package=mock
type Geocoder interface {
	Search(ctx context.Context, query string) ([]AddressResult, error)
}

const (
	photonResultLimit = 8
	photonTimeout     = 5 * time.Second
)

// PhotonGeocoder queries a Photon (komoot) endpoint. BBox, when set, is
// "lon_min,lat_min,lon_max,lat_max" and biases results to that area.
type PhotonGeocoder struct {
	BaseURL string
	BBox    string
	Client  *http.Client
}

func NewPhotonGeocoder(baseURL, bbox string) *PhotonGeocoder {
	return &PhotonGeocoder{
		BaseURL: baseURL,
		BBox:    bbox,
		Client:  &http.Client{Timeout: photonTimeout},
	}
}

type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name    string `json:"name"`
			Street  string `json:"street"`
			City    string `json:"city"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

func (g *PhotonGeocoder) Search(ctx context.Context, query string) ([]AddressResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", fmt.Sprint(photonResultLimit))
	q.Set("lang", "en")
	if g.BBox != "" {
		q.Set("bbox", g.BBox)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photon: unexpected status %d", res.StatusCode)
	}

	var body photonResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("photon: decode response: %w", err)
	}

	out := make([]AddressResult, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		p := f.Properties
		name := p.Name
		if name == "" {
			name = p.Street
		}
		if name == "" {
			name = "Unknown"
		}
		parts := []string{name}
		for _, v := range []string{p.City, p.State, p.Country} {
			if v != "" {
				parts = append(parts, v)
			}
		}
		out = append(out, AddressResult{
			Label:     strings.Join(parts, ", "),
			Longitude: f.Geometry.Coordinates[0],
			Latitude:  f.Geometry.Coordinates[1],
		})
	}
	return out, nil
}
