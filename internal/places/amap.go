// Package places looks up point-of-interest metadata for itinerary locations.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
)

// Finder resolves a free-text location to its first matching place.
// A nil result with a nil error means nothing matched.
type Finder interface {
	Lookup(ctx context.Context, name string) (*models.LocationDetails, error)
}

// AMapClient queries the AMap place text search API.
type AMapClient struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewAMapClient(url, apiKey string, timeout time.Duration) *AMapClient {
	return &AMapClient{
		url:    url,
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

type amapResponse struct {
	Status string    `json:"status"`
	Info   string    `json:"info"`
	POIs   []amapPOI `json:"pois"`
}

type amapPOI struct {
	Name     flexString  `json:"name"`
	Address  flexString  `json:"address"`
	Location flexString  `json:"location"`
	BizExt   amapBizExt  `json:"biz_ext"`
	Photos   []amapPhoto `json:"photos"`
}

type amapBizExt struct {
	Rating flexString `json:"rating"`
}

// UnmarshalJSON tolerates AMap's habit of sending [] in place of an empty object.
func (b *amapBizExt) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		*b = amapBizExt{}
		return nil
	}
	type plain amapBizExt
	return json.Unmarshal(data, (*plain)(b))
}

type amapPhoto struct {
	URL flexString `json:"url"`
}

// flexString decodes a JSON string, and treats anything else (AMap sends []
// for empty fields) as the empty string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = flexString(v)
	return nil
}

// Lookup returns the first matching place for name, or nil when AMap finds nothing.
func (c *AMapClient) Lookup(ctx context.Context, name string) (*models.LocationDetails, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("keywords", name)
	q.Set("offset", "1")
	q.Set("page", "1")
	q.Set("extensions", "all")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build place request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place request failed with status %d", resp.StatusCode)
	}

	var body amapResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode place response: %w", err)
	}
	if body.Status != "1" {
		return nil, fmt.Errorf("place search rejected: %s", body.Info)
	}
	if len(body.POIs) == 0 {
		return nil, nil
	}

	return toDetails(body.POIs[0]), nil
}

func toDetails(p amapPOI) *models.LocationDetails {
	rating := string(p.BizExt.Rating)
	if rating == "" {
		rating = models.RatingUnavailable
	}

	photos := make([]string, 0, len(p.Photos))
	for _, ph := range p.Photos {
		if ph.URL != "" {
			photos = append(photos, string(ph.URL))
		}
	}

	return &models.LocationDetails{
		Name:        string(p.Name),
		Address:     string(p.Address),
		Coordinates: string(p.Location),
		Rating:      rating,
		Photos:      photos,
	}
}
