package handler

import (
	"studyhub/internal/service"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// GoalHandler 学习目标处理器
type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// Create 创建目标
func (h *GoalHandler) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		GoalType    string `json:"goalType" binding:"max=64"`
		TargetValue int    `json:"targetValue"`
		TargetUnit  string `json:"targetUnit" binding:"max=32"`
		StartDate   string `json:"startDate"`
		EndDate     string `json:"endDate"`
	}
	if !bindJSON(c, &req) {
		return
	}

	start, err := optionalDate("startDate", req.StartDate, false)
	if err != nil {
		response.FromError(c, err)
		return
	}
	end, err := optionalDate("endDate", req.EndDate, false)
	if err != nil {
		response.FromError(c, err)
		return
	}

	goal, err := h.goalService.Create(c.Request.Context(), currentUser(c), service.GoalInput{
		Title:       req.Title,
		Description: req.Description,
		GoalType:    req.GoalType,
		TargetValue: req.TargetValue,
		TargetUnit:  req.TargetUnit,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "目标已创建", gin.H{"goal": goal})
}

// List 目标列表，可按 status 过滤
func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.goalService.List(c.Request.Context(), currentUser(c), c.Query("status"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"goals": goals, "count": len(goals)})
}

// UpdateProgress 更新目标进度
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Progress *int `json:"progress" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.goalService.UpdateProgress(c.Request.Context(), currentUser(c), id, *req.Progress)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "进度已更新", gin.H{"goal": goal})
}

// UpdateStatus 更新目标状态
func (h *GoalHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.goalService.UpdateStatus(c.Request.Context(), currentUser(c), id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "状态已更新", gin.H{"goal": goal})
}

func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.goalService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "目标已删除", nil)
}
