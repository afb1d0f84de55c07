package handler

import (
	"studyhub/internal/model"
	"studyhub/internal/service"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required,min=3,max=64"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"displayName" binding:"max=64"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "注册成功", response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Login 用户登录，usernameOrEmail 可以是用户名或邮箱
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Identifier      string `json:"identifier"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	identifier := req.UsernameOrEmail
	if identifier == "" {
		identifier = req.Identifier
	}
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		identifier = req.Email
	}

	user, token, err := h.userService.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Me 获取当前用户信息
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"user": response.FilterUserInfo(user)})
}

// UpdateMe 修改个人资料
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		DisplayName       *string `json:"displayName" binding:"omitempty,max=64"`
		Bio               *string `json:"bio" binding:"omitempty,max=512"`
		ProfilePictureRef *string `json:"profilePictureRef" binding:"omitempty,max=512"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), currentUser(c), service.ProfileUpdate{
		DisplayName:       req.DisplayName,
		Bio:               req.Bio,
		ProfilePictureRef: req.ProfilePictureRef,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", gin.H{"user": response.FilterUserInfo(user)})
}

// publicProfile 他人资料，不包含邮箱
type publicProfile struct {
	model.UserSummary
	Bio       string `json:"bio"`
	CreatedAt string `json:"createdAt"`
}

// Profile 查看用户资料及与当前用户的关系
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	user, status, err := h.userService.GetProfile(c.Request.Context(), currentUser(c), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user": publicProfile{
			UserSummary: user.Summary(),
			Bio:         user.Bio,
			CreatedAt:   user.CreatedAt.Format("2006-01-02 15:04:05"),
		},
		"friendStatus": status,
	})
}

// Search 按用户名或显示名搜索
func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		query = c.Query("query")
	}
	users, err := h.userService.Search(c.Request.Context(), currentUser(c), query)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"users": users, "count": len(users)})
}

// Online 在线用户列表
func (h *UserHandler) Online(c *gin.Context) {
	users, err := h.userService.OnlineUsers(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"users": users, "count": len(users)})
}
