package handler

import (
	"net/http"

	"tablepick/internal/service"
	"tablepick/internal/ws"

	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	interviews *service.InterviewService
	lobby      *ws.LobbyHub
}

func NewInterviewHandler(interviews *service.InterviewService, lobby *ws.LobbyHub) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, lobby: lobby}
}

// Start opens (or returns the existing) interview for a group member.
func (h *InterviewHandler) Start(c *gin.Context) {
	interview, err := h.interviews.Start(c.Param("group_id"), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interview)
}

func (h *InterviewHandler) Get(c *gin.Context) {
	interview, err := h.interviews.Get(c.Param("interview_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (h *InterviewHandler) Chat(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply, err := h.interviews.Chat(c.Request.Context(), c.Param("interview_id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Complete closes the interview and returns the extracted preferences.
func (h *InterviewHandler) Complete(c *gin.Context) {
	interview, prefs, err := h.interviews.Complete(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.lobby.Broadcast(ws.GroupEvent{
		Type:    ws.EventInterviewCompleted,
		GroupID: interview.GroupID,
		UserID:  interview.UserID,
	})
	c.JSON(http.StatusOK, gin.H{
		"interview":   interview,
		"preferences": prefs,
	})
}

func (h *InterviewHandler) ListByGroup(c *gin.Context) {
	list, err := h.interviews.ListByGroup(c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *InterviewHandler) ListByUser(c *gin.Context) {
	list, err := h.interviews.ListByUser(c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GroupStatus reports interview progress across a group, the gate
// clients poll before asking for recommendations.
func (h *InterviewHandler) GroupStatus(c *gin.Context) {
	status, err := h.interviews.StatusForGroup(c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
