package hotpepper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestMergeEmptyInput(t *testing.T) {
	q := Merge(nil)
	assert.Nil(t, q.Lat)
	assert.Nil(t, q.Lng)
	assert.Zero(t, q.Range)
	assert.Empty(t, q.Keyword)
	assert.Empty(t, q.Genre)
	assert.Empty(t, q.Budget)
	assert.Empty(t, q.Amenities)
}

func TestMergeCentroidIgnoresMembersWithoutCoordinates(t *testing.T) {
	q := Merge([]Preference{
		{Lat: f(35.0), Lng: f(139.0)},
		{Lat: f(35.02), Lng: f(139.02)},
		{Keyword: "ramen"},
	})
	require.NotNil(t, q.Lat)
	require.NotNil(t, q.Lng)
	assert.InDelta(t, 35.01, *q.Lat, 1e-9)
	assert.InDelta(t, 139.01, *q.Lng, 1e-9)
}

func TestMergeThreeMembers(t *testing.T) {
	q := Merge([]Preference{
		{Lat: f(35.0), Lng: f(139.0), SearchRange: 2, Amenities: map[string]bool{"wifi": true}},
		{Lat: f(35.02), Lng: f(139.02), SearchRange: 4, Amenities: map[string]bool{"wifi": true}},
		{Keyword: "ramen", Amenities: map[string]bool{"wifi": false}},
	})
	assert.Equal(t, 4, q.Range)
	assert.Equal(t, "ramen", q.Keyword)
	assert.NotContains(t, q.Amenities, "wifi")
}

func TestMergeKeywordUnionIsSortedAndDeduped(t *testing.T) {
	q := Merge([]Preference{
		{Keyword: "ramen quiet"},
		{Keyword: "quiet sushi"},
	})
	assert.Equal(t, "quiet ramen sushi", q.Keyword)
}

func TestMergeGenreUnion(t *testing.T) {
	q := Merge([]Preference{
		{GenreCodes: "G004, G001"},
		{GenreCodes: "G001,G013"},
	})
	assert.Equal(t, "G001,G004,G013", q.Genre)
}

func TestMergeBudgetCapKeepsTwoLowestCodes(t *testing.T) {
	q := Merge([]Preference{
		{BudgetCodes: "B003"},
		{BudgetCodes: "B001,B002"},
		{BudgetCodes: "B004"},
	})
	assert.Equal(t, "B001,B002", q.Budget)
}

func TestMergePartyCapacityTakesMax(t *testing.T) {
	q := Merge([]Preference{
		{PartyCapacity: 4},
		{PartyCapacity: 8},
		{},
	})
	assert.Equal(t, 8, q.PartyCapacity)
}

func TestMergeAmenityRequiresUnanimityAmongOpinionated(t *testing.T) {
	q := Merge([]Preference{
		{Amenities: map[string]bool{"non_smoking": true, "parking": true}},
		{Amenities: map[string]bool{"non_smoking": true}},
		{},
	})
	assert.Contains(t, q.Amenities, "non_smoking")
	// parking had a single opinion, which is enough
	assert.Contains(t, q.Amenities, "parking")
}

func TestMergeUnknownAmenityIgnored(t *testing.T) {
	q := Merge([]Preference{
		{Amenities: map[string]bool{"helipad": true}},
	})
	assert.Empty(t, q.Amenities)
}

func TestMergeIsDeterministic(t *testing.T) {
	prefs := []Preference{
		{Keyword: "izakaya yakitori", GenreCodes: "G002,G001", BudgetCodes: "B002,B001"},
		{Keyword: "beer", GenreCodes: "G003"},
	}
	first := Merge(prefs)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Merge(prefs))
	}
}
