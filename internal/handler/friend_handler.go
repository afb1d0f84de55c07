package handler

import (
	"studyhub/internal/service"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友关系处理器
type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		RecipientID uint `json:"recipientId" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.friendService.SendRequest(c.Request.Context(), currentUser(c), req.RecipientID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "好友请求已发送", gin.H{"link": link})
}

// AcceptRequest 接受好友请求
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	link, err := h.friendService.AcceptRequest(c.Request.Context(), id, currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已接受好友请求", gin.H{"link": link})
}

// PendingIncoming 收到的好友请求
func (h *FriendHandler) PendingIncoming(c *gin.Context) {
	views, err := h.friendService.ListPendingIncoming(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"pendingRequests": views, "count": len(views)})
}

// PendingOutgoing 发出的好友请求
func (h *FriendHandler) PendingOutgoing(c *gin.Context) {
	views, err := h.friendService.ListPendingOutgoing(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"outgoingRequests": views, "count": len(views)})
}

// ListFriends 好友列表
func (h *FriendHandler) ListFriends(c *gin.Context) {
	friends, err := h.friendService.ListFriends(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"friends": friends, "count": len(friends)})
}

// RemoveFriend 删除好友，也用于拒绝或撤回请求
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	otherUserID, ok := idParam(c, "otherUserId")
	if !ok {
		return
	}
	if err := h.friendService.RemoveLink(c.Request.Context(), currentUser(c), otherUserID); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友关系已删除", nil)
}

// Status 与某个用户的关系状态
func (h *FriendHandler) Status(c *gin.Context) {
	otherUserID, ok := idParam(c, "otherUserId")
	if !ok {
		return
	}
	status, err := h.friendService.StatusBetween(c.Request.Context(), currentUser(c), otherUserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"status": status})
}
