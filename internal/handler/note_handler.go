package handler

import (
	"studyhub/internal/service"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// NoteHandler 学习笔记处理器
type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

type noteRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=255"`
	Content *string `json:"content"`
	Subject *string `json:"subject" binding:"omitempty,max=128"`
}

func (r noteRequest) input() service.NoteInput {
	return service.NoteInput{Title: r.Title, Content: r.Content, Subject: r.Subject}
}

// Create 创建笔记
func (h *NoteHandler) Create(c *gin.Context) {
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.noteService.Create(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "笔记已创建", gin.H{"note": note})
}

// ListOwn 自己的笔记
func (h *NoteHandler) ListOwn(c *gin.Context) {
	notes, err := h.noteService.ListOwn(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"notes": notes, "count": len(notes)})
}

// ListShared 好友分享给我的笔记
func (h *NoteHandler) ListShared(c *gin.Context) {
	views, err := h.noteService.ListSharedWithMe(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"sharedNotes": views, "count": len(views)})
}

// Share 分享笔记给好友
func (h *NoteHandler) Share(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		FriendID uint `json:"friendId" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	share, err := h.noteService.Share(c.Request.Context(), currentUser(c), id, req.FriendID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "笔记已分享", gin.H{"share": share})
}

func (h *NoteHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.noteService.Update(c.Request.Context(), currentUser(c), id, req.input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "笔记已更新", gin.H{"note": note})
}

func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.noteService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "笔记已删除", nil)
}
