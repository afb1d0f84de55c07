package handler

import (
	"studyhub/internal/repository"
	"studyhub/internal/service"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// ActivityHandler 学习活动处理器
type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// activityRequest 创建与修改共用，修改时未提供的字段保持不变
type activityRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=255"`
	Description     *string `json:"description"`
	ActivityType    *string `json:"activityType" binding:"omitempty,max=64"`
	Subject         *string `json:"subject" binding:"omitempty,max=128"`
	DurationMinutes *int    `json:"durationMinutes"`
	Category        *string `json:"category" binding:"omitempty,max=64"`
	Tags            *string `json:"tags" binding:"omitempty,max=512"`
}

func (r activityRequest) input() service.ActivityInput {
	return service.ActivityInput{
		Title:           r.Title,
		Description:     r.Description,
		ActivityType:    r.ActivityType,
		Subject:         r.Subject,
		DurationMinutes: r.DurationMinutes,
		Category:        r.Category,
		Tags:            r.Tags,
	}
}

// Create 记录学习活动
func (h *ActivityHandler) Create(c *gin.Context) {
	var req activityRequest
	if !bindJSON(c, &req) {
		return
	}
	activity, err := h.activityService.Create(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "活动已记录", gin.H{"activity": activity})
}

// List 活动列表，支持 startDate/endDate/activityType 过滤
func (h *ActivityHandler) List(c *gin.Context) {
	from, err := optionalDate("startDate", c.Query("startDate"), false)
	if err != nil {
		response.FromError(c, err)
		return
	}
	to, err := optionalDate("endDate", c.Query("endDate"), true)
	if err != nil {
		response.FromError(c, err)
		return
	}

	activities, err := h.activityService.List(c.Request.Context(), currentUser(c), repository.ActivityFilter{
		From:         from,
		To:           to,
		ActivityType: c.Query("activityType"),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"activities": activities, "count": len(activities)})
}

func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	activity, err := h.activityService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"activity": activity})
}

func (h *ActivityHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req activityRequest
	if !bindJSON(c, &req) {
		return
	}
	activity, err := h.activityService.Update(c.Request.Context(), currentUser(c), id, req.input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "活动已更新", gin.H{"activity": activity})
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.activityService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "活动已删除", nil)
}
