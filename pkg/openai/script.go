package openai

import "strings"

// The scripted interviewer is a keyword matcher, not a language model.
// It walks the diner through budget, cuisine and area, then asks for
// special requests once all three are covered.

// OpeningMessage is the assistant's first turn of every interview.
const OpeningMessage = "Hi! I'll help pick a restaurant for your group. Tell me about your budget, favorite cuisines, and which area works for you."

var (
	budgetWords = []string{
		"budget", "yen", "1000", "2000", "3000", "5000",
		"cheap", "affordable", "expensive", "lunch", "dinner",
	}
	areaWords = []string{
		"shibuya", "shinjuku", "ginza", "ebisu", "omotesando",
		"roppongi", "ikebukuro", "ueno", "asakusa", "akihabara",
		"tokyo", "osaka", "kyoto", "nagoya", "kobe", "fukuoka",
		"umeda", "shinsaibashi", "namba", "tennoji",
	}
	specialRequestWords = []string{
		"private room", "non-smoking", "kids", "children", "vegetarian",
		"parking", "view", "nothing special", "none",
	}
)

type keywordGroup struct {
	name  string
	words []string
}

var cuisineGroups = []keywordGroup{
	{"Japanese", []string{"japanese", "sushi", "tempura", "izakaya", "sashimi", "ramen", "kaiseki"}},
	{"Italian", []string{"italian", "pasta", "pizza"}},
	{"French", []string{"french", "bistro"}},
	{"Chinese", []string{"chinese", "dim sum", "dumpling", "mapo"}},
	{"Korean", []string{"korean", "kimchi", "bibimbap", "samgyeopsal"}},
	{"Thai", []string{"thai", "tom yum", "pad thai"}},
	{"Yakiniku", []string{"yakiniku", "bbq", "barbecue", "grilled meat"}},
	{"Western", []string{"steak", "burger", "hamburg"}},
}

var allergyGroups = []keywordGroup{
	{"seafood", []string{"shellfish", "shrimp", "crab", "fish allergy"}},
	{"egg", []string{"egg allergy"}},
	{"dairy", []string{"lactose", "dairy"}},
	{"nuts", []string{"nut allergy", "peanut"}},
	{"buckwheat", []string{"buckwheat", "soba allergy"}},
}

var requestGroups = []keywordGroup{
	{"private room", []string{"private room", "private"}},
	{"non-smoking seats", []string{"non-smoking", "no smoking"}},
	{"nice view", []string{"view", "scenery"}},
	{"parking", []string{"parking", "by car"}},
	{"vegetarian options", []string{"vegetarian", "vegan"}},
	{"kid friendly", []string{"kids", "children", "child"}},
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func userContent(transcript []Message) (all string, userTurns int) {
	var parts []string
	for _, m := range transcript {
		if m.Role == "user" {
			parts = append(parts, m.Content)
			userTurns++
		}
	}
	return strings.ToLower(strings.Join(parts, " ")), userTurns
}

func hasCuisine(s string) bool {
	for _, g := range cuisineGroups {
		if containsAny(s, g.words) {
			return true
		}
	}
	return false
}

func scriptedReply(transcript []Message) string {
	all, userTurns := userContent(transcript)
	if userTurns == 0 {
		return OpeningMessage
	}

	hasBudget := containsAny(all, budgetWords)
	hasFood := hasCuisine(all)
	hasArea := containsAny(all, areaWords)

	if hasBudget && hasFood && hasArea {
		if containsAny(all, specialRequestWords) {
			return "Great, that's everything I need. I'll use these preferences when we search for your group. You can finish the interview now."
		}
		return "Nice, we have budget, cuisine and area covered. Any special requests - private room, non-smoking, kid friendly, vegetarian options? If not, just say \"none\"."
	}

	var missing []string
	if !hasBudget {
		missing = append(missing, "- a rough budget per person (e.g. 1000-2000 yen for lunch)")
	}
	if !hasFood {
		missing = append(missing, "- cuisines you're in the mood for (Japanese, Italian, Chinese, ...)")
	}
	if !hasArea {
		missing = append(missing, "- the area or nearest station")
	}
	return "Thanks! To narrow things down, could you also tell me:\n" + strings.Join(missing, "\n")
}

func scriptedPreferences(transcript []Message) Preferences {
	all, _ := userContent(transcript)

	prefs := Preferences{
		Budget:          "2000-4000",
		CuisineTypes:    []string{},
		Allergies:       []string{},
		Atmosphere:      "casual",
		SpecialRequests: []string{},
	}

	switch {
	case containsAny(all, []string{"1000", "cheap", "affordable", "student"}):
		prefs.Budget = "1000-2000"
	case containsAny(all, []string{"5000", "fancy", "anniversary", "special occasion"}):
		prefs.Budget = "4000-8000"
	case strings.Contains(all, "3000"):
		prefs.Budget = "2500-4000"
	case containsAny(all, []string{"2000", "lunch"}):
		prefs.Budget = "1500-3000"
	}

	for _, g := range cuisineGroups {
		if containsAny(all, g.words) {
			prefs.CuisineTypes = append(prefs.CuisineTypes, g.name)
		}
	}

	for _, area := range areaWords {
		if strings.Contains(all, area) {
			prefs.Location = strings.ToUpper(area[:1]) + area[1:]
			break
		}
	}

	for _, g := range allergyGroups {
		if containsAny(all, g.words) {
			prefs.Allergies = append(prefs.Allergies, g.name)
		}
	}

	switch {
	case containsAny(all, []string{"date", "anniversary", "birthday", "romantic"}):
		prefs.Atmosphere = "romantic"
	case containsAny(all, []string{"business", "client", "formal"}):
		prefs.Atmosphere = "formal"
	case containsAny(all, []string{"family", "kids", "children"}):
		prefs.Atmosphere = "family friendly"
	case containsAny(all, []string{"quiet", "calm", "relaxed"}):
		prefs.Atmosphere = "quiet"
	}

	for _, g := range requestGroups {
		if containsAny(all, g.words) {
			prefs.SpecialRequests = append(prefs.SpecialRequests, g.name)
		}
	}

	return prefs
}
