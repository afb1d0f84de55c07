package handler

import (
	"io"
	"net/http"

	"studyhub/internal/service"
	"studyhub/pkg/apperr"
	"studyhub/pkg/logger"
	"studyhub/pkg/response"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MemoryHandler 回忆相册处理器
type MemoryHandler struct {
	memoryService *service.MemoryService
}

func NewMemoryHandler(memoryService *service.MemoryService) *MemoryHandler {
	return &MemoryHandler{memoryService: memoryService}
}

// Upload 上传图片（multipart 字段 image），附带 title/description/tags
func (h *MemoryHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			response.FromError(c, apperr.InvalidArgument("image", "image file is required"))
			return
		}
		response.FromError(c, apperr.InvalidArgument("image", "invalid multipart form"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.FromError(c, apperr.Internal(err))
		return
	}
	defer file.Close()

	// 以文件内容识别类型，不信任客户端声明的 Content-Type
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		response.FromError(c, apperr.InvalidArgument("image", "unreadable image file"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		response.FromError(c, apperr.Internal(err))
		return
	}

	memory, err := h.memoryService.Upload(c.Request.Context(), currentUser(c), service.MemoryUpload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
		Filename:    header.Filename,
		ContentType: mtype.String(),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	logger.Info("回忆图片已上传",
		zap.Uint("memory_id", memory.ID),
		zap.Uint("user_id", memory.UserID),
		zap.Int64("size", header.Size),
	)
	response.Created(c, "上传成功", gin.H{"memory": memory})
}

// ListOwn 自己的回忆
func (h *MemoryHandler) ListOwn(c *gin.Context) {
	memories, err := h.memoryService.ListOwn(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"memories": memories, "count": len(memories)})
}

// ListFriend 好友的回忆，非好友返回 404
func (h *MemoryHandler) ListFriend(c *gin.Context) {
	friendID, ok := idParam(c, "friendId")
	if !ok {
		return
	}
	memories, err := h.memoryService.ListFriend(c.Request.Context(), currentUser(c), friendID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"memories": memories, "count": len(memories)})
}

func (h *MemoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.memoryService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "回忆已删除", nil)
}
