package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"studyhub/config"
	"studyhub/pkg/jwt"
	"studyhub/pkg/logger"
	"studyhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Presence 在线状态记录，可以为nil
type Presence interface {
	SetOnline(ctx context.Context, userID uint, username string) error
	SetOffline(ctx context.Context, userID uint) error
	Refresh(ctx context.Context, userID uint) error
}

// presenceTimeout 在线状态写入超时
const presenceTimeout = 3 * time.Second

// Handler WebSocket接入
type Handler struct {
	hub      *Hub
	jwt      *jwt.JWTService
	cfg      config.WebSocketConfig
	presence Presence
	upgrader websocket.Upgrader
}

// NewHandler 创建WebSocket接入处理器
// allowedOrigins 为空或包含 "*" 时不校验来源
func NewHandler(hub *Hub, jwtService *jwt.JWTService, cfg config.WebSocketConfig, presence Presence, allowedOrigins []string) *Handler {
	h := &Handler{hub: hub, jwt: jwtService, cfg: cfg, presence: presence}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// 非浏览器客户端（移动端）不带Origin
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWS GET /ws?token=<jwt>
// 升级前用与REST相同的JWT服务校验token
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID, _ := claims.UserID()
	username := claims.Username()

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := NewClient(userID, username, conn, h.cfg.SendBuffer)
	h.hub.Register(client)
	h.setOnline(client)
	logger.Info("WebSocket连接建立",
		zap.Uint("user_id", userID),
		zap.String("client_id", client.ID),
	)

	go client.writePump(h.cfg.PingInterval)

	// 读循环在当前goroutine中运行，返回即连接断开
	client.readPump(context.Background(), h.hub, h.presence, h.cfg.ReadTimeout)

	remaining := h.hub.Unregister(client)
	if remaining == 0 {
		h.setOffline(client)
	}
	logger.Info("WebSocket连接断开",
		zap.Uint("user_id", userID),
		zap.String("client_id", client.ID),
		zap.Int("remaining", remaining),
	)
}

func (h *Handler) setOnline(c *Client) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := h.presence.SetOnline(ctx, c.UserID, c.Username); err != nil {
		logger.Warn("设置在线状态失败", zap.Uint("user_id", c.UserID), zap.Error(err))
	}
}

func (h *Handler) setOffline(c *Client) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	if err := h.presence.SetOffline(ctx, c.UserID); err != nil {
		logger.Warn("设置离线状态失败", zap.Uint("user_id", c.UserID), zap.Error(err))
	}
}
