package handler

import (
	"studyhub/internal/service"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 学习统计处理器
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Weekly 周统计，?weekStart=YYYY-MM-DD
func (h *AnalyticsHandler) Weekly(c *gin.Context) {
	report, err := h.analyticsService.Weekly(c.Request.Context(), currentUser(c), c.Query("weekStart"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

// Monthly 月统计，?month=YYYY-MM
func (h *AnalyticsHandler) Monthly(c *gin.Context) {
	report, err := h.analyticsService.Monthly(c.Request.Context(), currentUser(c), c.Query("month"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *AnalyticsHandler) Subjects(c *gin.Context) {
	report, err := h.analyticsService.Subjects(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

// GroupComparison 与好友的本周学习时长对比
func (h *AnalyticsHandler) GroupComparison(c *gin.Context) {
	members, err := h.analyticsService.GroupComparison(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"groupComparison": members, "count": len(members)})
}
