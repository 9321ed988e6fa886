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

type GroupHandler struct {
	groups *repository.GroupRepository
	users  *repository.UserRepository
	lobby  *ws.LobbyHub
}

func NewGroupHandler(groups *repository.GroupRepository, users *repository.UserRepository, lobby *ws.LobbyHub) *GroupHandler {
	return &GroupHandler{groups: groups, users: users, lobby: lobby}
}

type memberView struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}

func groupView(g *models.Group) gin.H {
	members := make([]memberView, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, memberView{UserID: m.ID, Nickname: m.Nickname})
	}
	return gin.H{
		"group_id":     g.ID,
		"name":         g.Name,
		"host_user_id": g.HostUserID,
		"invite_code":  g.InviteCode,
		"status":       g.Status,
		"created_at":   g.CreatedAt,
		"updated_at":   g.UpdatedAt,
		"members":      members,
	}
}

// Create makes a group with the host as its first member.
func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		Name       string `json:"name"`
		HostUserID string `json:"host_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	host, err := h.users.GetByID(req.HostUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	group := &models.Group{
		Name:       req.Name,
		HostUserID: host.ID,
		Members:    []models.User{*host},
	}
	if err := h.groups.Create(group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, groupView(group))
}

// Join adds a user to the group behind an invite code. Joining a group
// the user is already in is a validation error, matching the client
// flow where the lobby is entered directly instead.
func (h *GroupHandler) Join(c *gin.Context) {
	var req struct {
		InviteCode string `json:"invite_code" binding:"required,len=6"`
		UserID     string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := h.groups.GetByInviteCode(req.InviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid invite code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	user, err := h.users.GetByID(req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if group.HasMember(user.ID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is already a member of this group"})
		return
	}
	if err := h.groups.AddMember(group, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "join failed"})
		return
	}
	group.Members = append(group.Members, *user)
	h.lobby.Broadcast(ws.GroupEvent{
		Type:    ws.EventMemberJoined,
		GroupID: group.ID,
		UserID:  user.ID,
		Payload: memberView{UserID: user.ID, Nickname: user.Nickname},
	})
	c.JSON(http.StatusOK, groupView(group))
}

func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.GetByID(c.Param("group_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrGroupNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, groupView(group))
}

// Update merge-patches name and status.
func (h *GroupHandler) Update(c *gin.Context) {
	group, err := h.groups.GetByID(c.Param("group_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrGroupNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	var req struct {
		Name   *string `json:"name"`
		Status *string `json:"status" binding:"omitempty,oneof=active completed cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Status != nil {
		group.Status = *req.Status
	}
	if err := h.groups.Update(group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, groupView(group))
}

// AddMember is idempotent: adding an existing member is a no-op.
func (h *GroupHandler) AddMember(c *gin.Context) {
	group, user, ok := h.resolve(c)
	if !ok {
		return
	}
	if !group.HasMember(user.ID) {
		if err := h.groups.AddMember(group, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "add failed"})
			return
		}
		h.lobby.Broadcast(ws.GroupEvent{Type: ws.EventMemberJoined, GroupID: group.ID, UserID: user.ID})
	}
	c.JSON(http.StatusOK, gin.H{"message": "member added to group"})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	group, user, ok := h.resolve(c)
	if !ok {
		return
	}
	if group.HasMember(user.ID) {
		if err := h.groups.RemoveMember(group, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
			return
		}
		h.lobby.Broadcast(ws.GroupEvent{Type: ws.EventMemberLeft, GroupID: group.ID, UserID: user.ID})
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed from group"})
}

func (h *GroupHandler) resolve(c *gin.Context) (*models.Group, *models.User, bool) {
	group, err := h.groups.GetByID(c.Param("group_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrGroupNotFound)
			return nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, nil, false
	}
	user, err := h.users.GetByID(c.Param("user_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, service.ErrUserNotFound)
			return nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, nil, false
	}
	return group, user, true
}
