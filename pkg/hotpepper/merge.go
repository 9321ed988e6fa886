package hotpepper

import (
	"sort"
	"strings"
)

// AmenityFields is the fixed set of boolean venue conditions the
// directory API understands. Flags outside this list are ignored.
var AmenityFields = []string{
	"wifi", "wedding", "course", "free_drink", "free_food",
	"private_room", "horigotatsu", "tatami", "cocktail", "shochu",
	"sake", "wine", "card", "non_smoking", "charter", "ktai",
	"parking", "barrier_free", "sommelier", "night_view", "open_air",
	"show", "equipment", "karaoke", "band", "tv", "lunch",
	"midnight", "midnight_meal", "english", "pet", "child",
}

// Preference is one member's search constraints as fed to the merge.
// Any field may be zero; a nil Amenities entry means no opinion.
type Preference struct {
	Lat           *float64
	Lng           *float64
	SearchRange   int
	Keyword       string
	GenreCodes    string // comma-joined
	BudgetCodes   string // comma-joined
	PartyCapacity int
	Amenities     map[string]bool
}

// MaxBudgetCodes caps how many budget codes a merged query carries. The
// directory treats multiple codes as OR, so an unbounded union would
// widen the price band with every dissenting member; when more than two
// distinct codes are requested, only the first two (after sorting) are
// kept. This is a deliberate lossy cap.
const MaxBudgetCodes = 2

// Merge folds the members' preferences into a single search query:
// coordinate centroid, widest radius, unioned keywords and genres,
// capped budgets, largest party size, and amenity flags every
// opinionated member agreed on. Pure and deterministic; an empty input
// yields an empty query.
func Merge(prefs []Preference) Query {
	var q Query

	var latSum, lngSum float64
	var coords int
	for _, p := range prefs {
		if p.Lat != nil && p.Lng != nil {
			latSum += *p.Lat
			lngSum += *p.Lng
			coords++
		}
		if p.SearchRange > q.Range {
			q.Range = p.SearchRange
		}
		if p.PartyCapacity > q.PartyCapacity {
			q.PartyCapacity = p.PartyCapacity
		}
	}
	if coords > 0 {
		lat := latSum / float64(coords)
		lng := lngSum / float64(coords)
		q.Lat = &lat
		q.Lng = &lng
	}

	keywords := map[string]struct{}{}
	for _, p := range prefs {
		for _, tok := range strings.Fields(p.Keyword) {
			keywords[tok] = struct{}{}
		}
	}
	q.Keyword = strings.Join(sortedKeys(keywords), " ")

	genres := map[string]struct{}{}
	for _, p := range prefs {
		for _, code := range splitCodes(p.GenreCodes) {
			genres[code] = struct{}{}
		}
	}
	q.Genre = strings.Join(sortedKeys(genres), ",")

	budgets := map[string]struct{}{}
	for _, p := range prefs {
		for _, code := range splitCodes(p.BudgetCodes) {
			budgets[code] = struct{}{}
		}
	}
	merged := sortedKeys(budgets)
	if len(merged) > MaxBudgetCodes {
		merged = merged[:MaxBudgetCodes]
	}
	q.Budget = strings.Join(merged, ",")

	// A flag survives only if every member who expressed an opinion on
	// it set it true. Silence does not count against a flag.
	for _, field := range AmenityFields {
		opinions := 0
		agreed := true
		for _, p := range prefs {
			v, ok := p.Amenities[field]
			if !ok {
				continue
			}
			opinions++
			if !v {
				agreed = false
				break
			}
		}
		if opinions > 0 && agreed {
			q.Amenities = append(q.Amenities, field)
		}
	}

	return q
}

func splitCodes(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
