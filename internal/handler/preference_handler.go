package handler

import (
	"errors"
	"net/http"
	"time"

	"tablepick/internal/domain"
	"tablepick/internal/models"
	"tablepick/internal/repository"
	"tablepick/internal/service"
	"tablepick/pkg/geo"
	"tablepick/pkg/hotpepper"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PreferenceHandler struct {
	prefs  *repository.PreferenceRepository
	groups *repository.GroupRepository
	recs   *service.RecommendationService
}

func NewPreferenceHandler(prefs *repository.PreferenceRepository, groups *repository.GroupRepository, recs *service.RecommendationService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs, groups: groups, recs: recs}
}

type preferenceRequest struct {
	LocationKeyword    string              `json:"location_keyword"`
	Lat                *float64            `json:"lat"`
	Lng                *float64            `json:"lng"`
	SearchRange        int                 `json:"search_range" binding:"omitempty,min=1,max=5"`
	GenreCodes         string              `json:"genre_codes"`
	CuisinePreferences string              `json:"cuisine_preferences"`
	BudgetCodes        string              `json:"budget_codes"`
	BudgetMin          *int                `json:"budget_min"`
	BudgetMax          *int                `json:"budget_max"`
	PartyCapacity      *int                `json:"party_capacity"`
	PreferredDatetime  *time.Time          `json:"preferred_datetime"`
	Keywords           string              `json:"keywords"`
	OtherConditions    models.AmenityFlags `json:"other_conditions"`
}

// Submit stores a member's search preferences. Resubmitting replaces the
// prior row wholesale; there is no preference history.
func (h *PreferenceHandler) Submit(c *gin.Context) {
	groupID := c.Param("group_id")
	userID := c.Param("user_id")
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := h.requireMember(c, groupID, userID)
	if err != nil || !member {
		return
	}
	pref := &models.SearchPreference{
		GroupID:            groupID,
		UserID:             userID,
		LocationKeyword:    req.LocationKeyword,
		Lat:                req.Lat,
		Lng:                req.Lng,
		SearchRange:        req.SearchRange,
		GenreCodes:         req.GenreCodes,
		CuisinePreferences: req.CuisinePreferences,
		BudgetCodes:        req.BudgetCodes,
		BudgetMin:          req.BudgetMin,
		BudgetMax:          req.BudgetMax,
		PartyCapacity:      req.PartyCapacity,
		PreferredDatetime:  req.PreferredDatetime,
		Keywords:           req.Keywords,
		OtherConditions:    req.OtherConditions,
	}
	if pref.SearchRange == 0 {
		pref.SearchRange = domain.SearchRangeDefault
	}
	if err := h.prefs.Replace(pref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, pref)
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	pref, err := h.prefs.GetByGroupAndUser(c.Param("group_id"), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "preferences not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, pref)
}

type preferencePatch struct {
	LocationKeyword    *string              `json:"location_keyword"`
	Lat                *float64             `json:"lat"`
	Lng                *float64             `json:"lng"`
	SearchRange        *int                 `json:"search_range" binding:"omitempty,min=1,max=5"`
	GenreCodes         *string              `json:"genre_codes"`
	CuisinePreferences *string              `json:"cuisine_preferences"`
	BudgetCodes        *string              `json:"budget_codes"`
	BudgetMin          *int                 `json:"budget_min"`
	BudgetMax          *int                 `json:"budget_max"`
	PartyCapacity      *int                 `json:"party_capacity"`
	PreferredDatetime  *time.Time           `json:"preferred_datetime"`
	Keywords           *string              `json:"keywords"`
	OtherConditions    *models.AmenityFlags `json:"other_conditions"`
}

// Patch updates only the fields present in the request body.
func (h *PreferenceHandler) Patch(c *gin.Context) {
	pref, err := h.prefs.GetByGroupAndUser(c.Param("group_id"), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "preferences not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	var req preferencePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.LocationKeyword != nil {
		pref.LocationKeyword = *req.LocationKeyword
	}
	if req.Lat != nil {
		pref.Lat = req.Lat
	}
	if req.Lng != nil {
		pref.Lng = req.Lng
	}
	if req.SearchRange != nil {
		pref.SearchRange = *req.SearchRange
	}
	if req.GenreCodes != nil {
		pref.GenreCodes = *req.GenreCodes
	}
	if req.CuisinePreferences != nil {
		pref.CuisinePreferences = *req.CuisinePreferences
	}
	if req.BudgetCodes != nil {
		pref.BudgetCodes = *req.BudgetCodes
	}
	if req.BudgetMin != nil {
		pref.BudgetMin = req.BudgetMin
	}
	if req.BudgetMax != nil {
		pref.BudgetMax = req.BudgetMax
	}
	if req.PartyCapacity != nil {
		pref.PartyCapacity = req.PartyCapacity
	}
	if req.PreferredDatetime != nil {
		pref.PreferredDatetime = req.PreferredDatetime
	}
	if req.Keywords != nil {
		pref.Keywords = *req.Keywords
	}
	if req.OtherConditions != nil {
		pref.OtherConditions = *req.OtherConditions
	}
	if err := h.prefs.Update(pref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (h *PreferenceHandler) ListByGroup(c *gin.Context) {
	list, err := h.prefs.ListByGroup(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Search runs the merged-preference directory search for a group without
// creating a recommendation, and echoes the merged query alongside the
// results so members can see what their combined constraints look like.
func (h *PreferenceHandler) Search(c *gin.Context) {
	groupID := c.Param("group_id")
	if _, err := h.groups.GetByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrGroupNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	prefs, err := h.prefs.ListByGroup(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if len(prefs) == 0 {
		respondError(c, service.ErrNoPreferences)
		return
	}
	restaurants, err := h.recs.SearchForGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	query := service.MergeGroupPreferences(prefs)
	c.JSON(http.StatusOK, gin.H{
		"restaurants":  restaurantViews(restaurants, query),
		"merged_query": queryView(query),
	})
}

type restaurantView struct {
	hotpepper.Restaurant
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Walk       string   `json:"walk,omitempty"`
}

// restaurantViews annotates each hit with its distance from the merged
// centroid, when the group supplied coordinates at all.
func restaurantViews(restaurants []hotpepper.Restaurant, q hotpepper.Query) []restaurantView {
	views := make([]restaurantView, 0, len(restaurants))
	radius := geo.RangeRadiusKm(q.Range)
	for _, r := range restaurants {
		v := restaurantView{Restaurant: r}
		if q.Lat != nil && q.Lng != nil && (r.Lat != 0 || r.Lng != 0) {
			d := geo.DistanceKm(*q.Lat, *q.Lng, r.Lat, r.Lng)
			v.DistanceKm = &d
			v.Walk = geo.WalkLabel(geo.Closeness(d, radius))
		}
		views = append(views, v)
	}
	return views
}

func queryView(q hotpepper.Query) gin.H {
	view := gin.H{
		"range":     q.Range,
		"keyword":   q.Keyword,
		"genre":     q.Genre,
		"budget":    q.Budget,
		"amenities": q.Amenities,
	}
	if q.Lat != nil && q.Lng != nil {
		view["lat"] = *q.Lat
		view["lng"] = *q.Lng
	}
	if q.PartyCapacity > 0 {
		view["party_capacity"] = q.PartyCapacity
	}
	return view
}

func (h *PreferenceHandler) requireMember(c *gin.Context, groupID, userID string) (bool, error) {
	if _, err := h.groups.GetByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrGroupNotFound)
			return false, err
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return false, err
	}
	member, err := h.groups.IsMember(groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return false, err
	}
	if !member {
		respondError(c, service.ErrNotMember)
		return false, nil
	}
	return true, nil
}
