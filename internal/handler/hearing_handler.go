package handler

import (
	"errors"
	"net/http"

	"tablepick/internal/models"
	"tablepick/internal/repository"
	"tablepick/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HearingHandler struct {
	hearings *repository.HearingRepository
	groups   *repository.GroupRepository
	users    *repository.UserRepository
}

func NewHearingHandler(hearings *repository.HearingRepository, groups *repository.GroupRepository, users *repository.UserRepository) *HearingHandler {
	return &HearingHandler{hearings: hearings, groups: groups, users: users}
}

func (h *HearingHandler) Create(c *gin.Context) {
	var req struct {
		GroupID  string `json:"group_id" binding:"required"`
		UserID   string `json:"user_id" binding:"required"`
		Question string `json:"question" binding:"required"`
		Answer   string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.groups.GetByID(req.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrGroupNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if _, err := h.users.GetByID(req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	hearing := &models.Hearing{
		GroupID:  req.GroupID,
		UserID:   req.UserID,
		Question: req.Question,
		Answer:   req.Answer,
	}
	if err := h.hearings.Create(hearing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, hearing)
}

func (h *HearingHandler) Get(c *gin.Context) {
	hearing, err := h.hearings.GetByID(c.Param("hearing_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hearing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, hearing)
}

// Update merge-patches the answer and status (how a pending hearing
// gets completed or skipped).
func (h *HearingHandler) Update(c *gin.Context) {
	hearing, err := h.hearings.GetByID(c.Param("hearing_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hearing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	var req struct {
		Answer *string `json:"answer"`
		Status *string `json:"status" binding:"omitempty,oneof=pending completed skipped"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Answer != nil {
		hearing.Answer = *req.Answer
	}
	if req.Status != nil {
		hearing.Status = *req.Status
	}
	if err := h.hearings.Update(hearing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, hearing)
}

func (h *HearingHandler) ListByGroup(c *gin.Context) {
	list, err := h.hearings.ListByGroup(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *HearingHandler) ListByUser(c *gin.Context) {
	list, err := h.hearings.ListByUser(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *HearingHandler) ListByGroupAndUser(c *gin.Context) {
	list, err := h.hearings.ListByGroupAndUser(c.Param("group_id"), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}
