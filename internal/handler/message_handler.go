package handler

import (
	"strconv"

	"studyhub/internal/service"
	"studyhub/pkg/apperr"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessageHandler 私信处理器
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 创建私信处理器
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// SendMessage 发送私信
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		RecipientID uint    `json:"recipientId" binding:"required"`
		Body        string  `json:"body"`
		ImageRef    *string `json:"imageRef" binding:"omitempty,max=512"`
	}
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), currentUser(c), req.RecipientID, req.Body, req.ImageRef)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "消息发送成功", gin.H{"message": message})
}

// GetConversation 与某个用户的聊天记录，读取后对方发来的消息标记为已读
func (h *MessageHandler) GetConversation(c *gin.Context) {
	otherUserID, ok := idParam(c, "otherUserId")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.FromError(c, apperr.InvalidArgument("limit", "limit must be an integer"))
			return
		}
		limit = n
	}

	messages, err := h.messageService.GetConversation(c.Request.Context(), currentUser(c), otherUserID, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"conversation": messages, "count": len(messages)})
}

// ListConversations 会话列表
func (h *MessageHandler) ListConversations(c *gin.Context) {
	conversations, err := h.messageService.ListConversations(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"conversations": conversations, "count": len(conversations)})
}

// UnreadCount 未读消息数
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.messageService.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"unreadCount": count})
}

// DeleteMessage 删除自己发送的消息
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.messageService.DeleteMessage(c.Request.Context(), id, currentUser(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "消息已删除", nil)
}
