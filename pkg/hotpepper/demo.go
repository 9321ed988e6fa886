package hotpepper

import "context"

// DemoDirectory serves a fixed candidate list for deployments without a
// directory API key (local development, demos). It is wired in only at
// startup and logged loudly; a live directory failure is never silently
// replaced with this data.
type DemoDirectory struct{}

func (DemoDirectory) Search(ctx context.Context, q Query) ([]Restaurant, error) {
	return []Restaurant{
		{
			ExternalID:  "demo-001",
			Name:        "Trattoria Lucciola",
			CuisineType: "Italian",
			Address:     "1-1-1 Ebisu, Shibuya-ku, Tokyo",
			PriceRange:  "¥¥",
			Rating:      4.2,
			ReviewCount: placeholderReviewCount,
			ImageURL:    "https://images.unsplash.com/photo-1555396273-367ea4eb4db5?w=300&h=200&fit=crop",
			Description: "Handmade pasta and a long wine list.",
		},
		{
			ExternalID:  "demo-002",
			Name:        "Izakaya Sakura",
			CuisineType: "Japanese",
			Address:     "2-2-2 Ebisu, Shibuya-ku, Tokyo",
			PriceRange:  "¥¥",
			Rating:      4.5,
			ReviewCount: placeholderReviewCount,
			ImageURL:    "https://images.unsplash.com/photo-1579952363873-27d3bfad9c0d?w=300&h=200&fit=crop",
			Description: "Seasonal small plates and sake.",
		},
		{
			ExternalID:  "demo-003",
			Name:        "Bistro Montagne",
			CuisineType: "French",
			Address:     "3-3-3 Ebisu, Shibuya-ku, Tokyo",
			PriceRange:  "¥¥¥",
			Rating:      4.3,
			ReviewCount: placeholderReviewCount,
			ImageURL:    "https://images.unsplash.com/photo-1414235077428-338989a2e8c0?w=300&h=200&fit=crop",
			Description: "Classic French plates in a quiet room.",
		},
	}, nil
}
