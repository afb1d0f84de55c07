package service

import (
	"context"
	"errors"
	"strings"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
	"studyhub/pkg/jwt"
	"studyhub/pkg/password"
)

const (
	// minSearchQueryLen 搜索关键词最短长度
	minSearchQueryLen = 2
	// maxSearchResults 搜索结果上限
	maxSearchResults = 20
)

// OnlineLister 在线用户查询（Redis不可用时为nil）
type OnlineLister interface {
	OnlineUserIDs(ctx context.Context) ([]uint, error)
}

type UserService struct {
	repo       *repository.UserRepository
	friendRepo *repository.FriendRepository
	jwtService *jwt.JWTService
	online     OnlineLister
}

func NewUserService(repo *repository.UserRepository, friendRepo *repository.FriendRepository, jwtService *jwt.JWTService, online OnlineLister) *UserService {
	return &UserService{repo: repo, friendRepo: friendRepo, jwtService: jwtService, online: online}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// Register 注册并签发token
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	switch {
	case username == "":
		return nil, "", apperr.InvalidArgument("username", "username is required")
	case email == "":
		return nil, "", apperr.InvalidArgument("email", "email is required")
	case !password.Acceptable(in.Password):
		return nil, "", apperr.InvalidArgument("password", "password must be at least 6 characters")
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	if taken {
		return nil, "", apperr.Conflict("username or email already exists")
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册由唯一索引兜底
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperr.Conflict("username or email already exists")
		}
		return nil, "", apperr.Internal(err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return user, token, nil
}

// Login 登录，用户名或邮箱均可
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", apperr.InvalidArgument("usernameOrEmail", "identifier and password are required")
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.Unauthorized("invalid credentials")
		}
		return nil, "", apperr.Internal(err)
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}
	token, err := s.jwtService.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return u, token, nil
}

// GetUser 获取用户
func (s *UserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// ProfileUpdate 资料修改，nil 表示不修改
type ProfileUpdate struct {
	DisplayName       *string
	Bio               *string
	ProfilePictureRef *string
}

// UpdateProfile 修改资料字段，身份字段不可修改
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileUpdate) (*model.User, error) {
	updates := make(map[string]interface{})
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, apperr.InvalidArgument("displayName", "displayName cannot be empty")
		}
		updates["display_name"] = name
	}
	if in.Bio != nil {
		updates["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.ProfilePictureRef != nil {
		updates["profile_picture_ref"] = strings.TrimSpace(*in.ProfilePictureRef)
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, id, updates); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetUser(ctx, id)
}

// GetProfile 查看他人资料及双方关系
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID uint) (*model.User, model.RelationStatus, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, model.RelationNone, err
	}
	if viewerID == userID {
		return u, model.RelationNone, nil
	}
	link, err := s.friendRepo.GetByPair(ctx, viewerID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, model.RelationNone, apperr.Internal(err)
	}
	return u, link.Relation(), nil
}

// Search 按用户名/显示名搜索用户
func (s *UserService) Search(ctx context.Context, callerID uint, query string) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQueryLen {
		return nil, apperr.InvalidArgument("query", "query must be at least 2 characters")
	}
	users, err := s.repo.Search(ctx, query, callerID, maxSearchResults)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return summaries(users), nil
}

// OnlineUsers 当前在线的用户，未启用在线状态时返回空列表
func (s *UserService) OnlineUsers(ctx context.Context) ([]model.UserSummary, error) {
	if s.online == nil {
		return []model.UserSummary{}, nil
	}
	ids, err := s.online.OnlineUserIDs(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	users, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	result := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			result = append(result, u.Summary())
		}
	}
	return result, nil
}

func summaries(users []*model.User) []model.UserSummary {
	out := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}
