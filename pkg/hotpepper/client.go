package hotpepper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the Hot Pepper gourmet search endpoint.
	DefaultBaseURL = "https://webservice.recruit.co.jp/hotpepper/gourmet/v1/"

	// maxResults is the per-call cap the directory accepts.
	maxResults = 20

	// The directory carries no ratings; candidates get a fixed
	// placeholder so the client UI has something to render.
	placeholderRating      = 4.0
	placeholderReviewCount = 100
)

// Query is the merged search request sent to the directory.
type Query struct {
	Lat           *float64
	Lng           *float64
	Range         int
	Keyword       string
	Genre         string
	Budget        string
	PartyCapacity int
	Amenities     []string
}

// Restaurant is the normalized candidate shape produced from a
// directory hit. Missing provider fields degrade to zero values.
type Restaurant struct {
	ExternalID  string   `json:"restaurant_id"`
	Name        string   `json:"name"`
	CuisineType string   `json:"cuisine_type"`
	Address     string   `json:"address"`
	PriceRange  string   `json:"price_range"`
	Rating      float64  `json:"external_rating"`
	ReviewCount int      `json:"external_review_count"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	Access      string   `json:"access"`
	OpenHours   string   `json:"open_hours"`
	ClosedDays  string   `json:"closed_days"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	URL         string   `json:"url"`
	Features    []string `json:"features"`
}

// SearchError is a typed directory failure: transport error, non-2xx
// response, or an unparseable payload.
type SearchError struct {
	Status int
	Err    error
}

func (e *SearchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("restaurant search: directory returned %d", e.Status)
	}
	return fmt.Sprintf("restaurant search: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Directory searches an external restaurant directory.
type Directory interface {
	Search(ctx context.Context, q Query) ([]Restaurant, error)
}

// Client queries the Hot Pepper gourmet API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Search(ctx context.Context, q Query) ([]Restaurant, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("format", "json")
	params.Set("count", strconv.Itoa(maxResults))
	params.Set("order", "4") // recommended order
	if q.Lat != nil && q.Lng != nil {
		params.Set("lat", strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		params.Set("lng", strconv.FormatFloat(*q.Lng, 'f', -1, 64))
	}
	if q.Range > 0 {
		params.Set("range", strconv.Itoa(q.Range))
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if q.Genre != "" {
		params.Set("genre", q.Genre)
	}
	if q.Budget != "" {
		params.Set("budget", q.Budget)
	}
	if q.PartyCapacity > 0 {
		params.Set("party_capacity", strconv.Itoa(q.PartyCapacity))
	}
	for _, flag := range q.Amenities {
		params.Set(flag, "1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SearchError{Err: err}
	}
	slog.Debug("directory search", "keyword", q.Keyword, "genre", q.Genre, "budget", q.Budget, "range", q.Range)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &SearchError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SearchError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &SearchError{Status: resp.StatusCode}
	}

	var payload gourmetResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &SearchError{Err: fmt.Errorf("decode directory payload: %w", err)}
	}
	out := make([]Restaurant, 0, len(payload.Results.Shop))
	for _, shop := range payload.Results.Shop {
		out = append(out, normalizeShop(shop))
	}
	return out, nil
}

type gourmetResponse struct {
	Results struct {
		Shop []gourmetShop `json:"shop"`
	} `json:"results"`
}

// gourmetShop covers the subset of the provider's shop record we use.
// Amenity fields arrive as strings; lat/lng as numbers.
type gourmetShop struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Genre   struct {
		Name string `json:"name"`
	} `json:"genre"`
	Budget struct {
		Name string `json:"name"`
	} `json:"budget"`
	Catch  string  `json:"catch"`
	Access string  `json:"access"`
	Open   string  `json:"open"`
	Close  string  `json:"close"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	URLs   struct {
		PC string `json:"pc"`
	} `json:"urls"`
	Photo struct {
		PC struct {
			L string `json:"l"`
			M string `json:"m"`
			S string `json:"s"`
		} `json:"pc"`
	} `json:"photo"`

	WiFi        string `json:"wifi"`
	PrivateRoom string `json:"private_room"`
	FreeDrink   string `json:"free_drink"`
	FreeFood    string `json:"free_food"`
	Card        string `json:"card"`
	NonSmoking  string `json:"non_smoking"`
	Parking     string `json:"parking"`
	NightView   string `json:"night_view"`
	Course      string `json:"course"`
	Karaoke     string `json:"karaoke"`
	Child       string `json:"child"`
}

func normalizeShop(s gourmetShop) Restaurant {
	return Restaurant{
		ExternalID:  s.ID,
		Name:        s.Name,
		CuisineType: s.Genre.Name,
		Address:     s.Address,
		PriceRange:  s.Budget.Name,
		Rating:      placeholderRating,
		ReviewCount: placeholderReviewCount,
		ImageURL:    shopImage(s),
		Description: s.Catch,
		Access:      s.Access,
		OpenHours:   s.Open,
		ClosedDays:  s.Close,
		Lat:         s.Lat,
		Lng:         s.Lng,
		URL:         s.URLs.PC,
		Features:    shopFeatures(s),
	}
}

func shopImage(s gourmetShop) string {
	switch {
	case s.Photo.PC.L != "":
		return s.Photo.PC.L
	case s.Photo.PC.M != "":
		return s.Photo.PC.M
	default:
		return s.Photo.PC.S
	}
}

// The provider reports amenities as "あり" (present) or "1".
func hasAmenity(v string) bool { return v == "あり" || v == "1" }

func shopFeatures(s gourmetShop) []string {
	var features []string
	for _, f := range []struct {
		value string
		label string
	}{
		{s.WiFi, "WiFi"},
		{s.PrivateRoom, "Private room"},
		{s.FreeDrink, "All-you-can-drink"},
		{s.FreeFood, "All-you-can-eat"},
		{s.Card, "Cards accepted"},
		{s.NonSmoking, "Non-smoking seats"},
		{s.Parking, "Parking"},
		{s.NightView, "Night view"},
		{s.Course, "Course menu"},
		{s.Karaoke, "Karaoke"},
		{s.Child, "Child friendly"},
	} {
		if hasAmenity(f.value) {
			features = append(features, f.label)
		}
	}
	return features
}
