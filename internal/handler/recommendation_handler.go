package handler

import (
	"errors"
	"net/http"

	"tablepick/internal/models"
	"tablepick/internal/repository"
	"tablepick/internal/service"
	"tablepick/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecommendationHandler struct {
	recs  *service.RecommendationService
	votes *service.VoteService
	repo  *repository.RecommendationRepository
	lobby *ws.LobbyHub
}

func NewRecommendationHandler(
	recs *service.RecommendationService,
	votes *service.VoteService,
	repo *repository.RecommendationRepository,
	lobby *ws.LobbyHub,
) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, votes: votes, repo: repo, lobby: lobby}
}

type candidateView struct {
	ID           string  `json:"candidate_id"`
	Name         string  `json:"name"`
	Address      string  `json:"address,omitempty"`
	Rating       float64 `json:"rating"`
	PriceRange   string  `json:"price_range,omitempty"`
	CuisineType  string  `json:"cuisine_type,omitempty"`
	Description  string  `json:"description,omitempty"`
	OpeningHours string  `json:"opening_hours,omitempty"`
	ExternalID   string  `json:"external_id,omitempty"`
	ExternalURL  string  `json:"external_url,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
}

func recommendationView(rec *models.Recommendation) gin.H {
	candidates := make([]candidateView, 0, len(rec.Candidates))
	for _, c := range rec.Candidates {
		candidates = append(candidates, candidateView{
			ID:           c.ID,
			Name:         c.Name,
			Address:      c.Address,
			Rating:       c.Rating,
			PriceRange:   c.PriceRange,
			CuisineType:  c.CuisineType,
			Description:  c.Description,
			OpeningHours: c.OpeningHours,
			ExternalID:   c.ExternalID,
			ExternalURL:  c.ExternalURL,
			ImageURL:     c.ImageURL,
		})
	}
	return gin.H{
		"recommendation_id": rec.ID,
		"group_id":          rec.GroupID,
		"status":            rec.Status,
		"candidates":        candidates,
		"created_at":        rec.CreatedAt,
	}
}

// Generate builds the group's one-shot candidate set. A second call for
// the same group conflicts instead of regenerating.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	rec, err := h.recs.Generate(c.Request.Context(), c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recommendationView(rec))
}

func (h *RecommendationHandler) Get(c *gin.Context) {
	rec, err := h.repo.GetByID(c.Param("recommendation_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrRecommendationNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, recommendationView(rec))
}

func (h *RecommendationHandler) GetByGroup(c *gin.Context) {
	rec, err := h.repo.LatestByGroup(c.Param("group_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrRecommendationNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, recommendationView(rec))
}

// Vote casts or moves a member's single live vote onto a candidate.
func (h *RecommendationHandler) Vote(c *gin.Context) {
	candidateID := c.Param("candidate_id")
	var req struct {
		UserID   string `json:"user_id" binding:"required"`
		VoteType string `json:"vote_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.votes.Cast(candidateID, req.UserID, req.VoteType)
	if err != nil {
		respondError(c, err)
		return
	}
	h.broadcastVote(candidateID, req.UserID)

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"vote_id":      result.VoteID,
		"candidate_id": candidateID,
		"user_id":      req.UserID,
		"vote_type":    req.VoteType,
		"created":      result.Created,
	})
}

func (h *RecommendationHandler) broadcastVote(candidateID, userID string) {
	candidate, err := h.repo.GetCandidate(candidateID)
	if err != nil {
		return
	}
	rec, err := h.repo.GetByID(candidate.RecommendationID)
	if err != nil {
		return
	}
	h.lobby.Broadcast(ws.GroupEvent{
		Type:    ws.EventVoteCast,
		GroupID: rec.GroupID,
		UserID:  userID,
		Payload: gin.H{"candidate_id": candidateID},
	})
}

func (h *RecommendationHandler) Votes(c *gin.Context) {
	tally, err := h.votes.Tally(c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

func (h *RecommendationHandler) UserVote(c *gin.Context) {
	state, err := h.votes.UserVote(c.Param("group_id"), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// SetFinalDecision records the host's pick. Only the host may call it,
// and a later call overwrites the earlier decision.
func (h *RecommendationHandler) SetFinalDecision(c *gin.Context) {
	groupID := c.Param("group_id")
	var req struct {
		UserID         string `json:"user_id" binding:"required"`
		RestaurantID   string `json:"restaurant_id" binding:"required"`
		RestaurantName string `json:"restaurant_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	decision, err := h.recs.SetFinalDecision(groupID, req.UserID, req.RestaurantID, req.RestaurantName)
	if err != nil {
		respondError(c, err)
		return
	}
	h.lobby.Broadcast(ws.GroupEvent{
		Type:    ws.EventDecisionMade,
		GroupID: groupID,
		UserID:  req.UserID,
		Payload: decision,
	})
	c.JSON(http.StatusOK, decision)
}

func (h *RecommendationHandler) FinalDecision(c *gin.Context) {
	decision, err := h.recs.FinalDecision(c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if decision == nil {
		c.JSON(http.StatusOK, gin.H{"final_decision": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"final_decision": decision})
}
