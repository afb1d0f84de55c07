package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"studyhub/config"
	"studyhub/internal/repository"
	"studyhub/internal/service"
	"studyhub/internal/testutil"
	"studyhub/pkg/jwt"
	"studyhub/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Field   string          `json:"field"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	store, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "handler-test", Issuer: "studyhub", ExpireTime: time.Hour})
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)

	h := Handlers{
		User:      NewUserHandler(service.NewUserService(userRepo, friendRepo, jwtSvc, nil)),
		Friend:    NewFriendHandler(service.NewFriendService(friendRepo, userRepo)),
		Message:   NewMessageHandler(service.NewMessageService(repository.NewMessageRepository(db), userRepo, nil)),
		Activity:  NewActivityHandler(service.NewActivityService(repository.NewActivityRepository(db))),
		Goal:      NewGoalHandler(service.NewGoalService(repository.NewGoalRepository(db))),
		Note:      NewNoteHandler(service.NewNoteService(repository.NewNoteRepository(db), friendRepo, userRepo)),
		Memory:    NewMemoryHandler(service.NewMemoryService(repository.NewMemoryRepository(db), friendRepo, store, 1<<20)),
		Analytics: NewAnalyticsHandler(service.NewAnalyticsService(repository.NewAnalyticsRepository(db), friendRepo, userRepo)),
	}
	router := NewRouter(h, jwtSvc, RouterOptions{
		AllowedOrigins: []string{"*"},
		HealthChecks: map[string]func(ctx context.Context) error{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// register 注册用户并返回 token 与用户ID
func (s *testServer) register(username string) (string, uint) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(s.t, data.AccessToken)
	return data.AccessToken, data.User.ID
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register("alice")
	assert.NotZero(t, id)

	w, env := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"identifier": "alice@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
}

func TestAuth_RegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "bob",
		"email":    "not-an-email",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, "email", env.Field)

	s.register("bob")
	w, env = s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "bob",
		"email":    "bob2@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 409, env.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/users/me", "/api/v1/friends", "/api/v1/messages", "/api/v1/goals"} {
		w, env := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, 401, env.Code, path)
	}

	w, _ := s.do(http.MethodGet, "/api/v1/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFriendRequestFlow(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := s.register("alice")
	bobToken, bobID := s.register("bob")

	w, env := s.do(http.MethodPost, "/api/v1/friend-requests", aliceToken, gin.H{"recipientId": bobID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Link struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"link"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Link.Status)

	// 请求方不能接受自己发出的请求
	w, _ = s.do(http.MethodPut, "/api/v1/friend-requests/"+strconv.Itoa(int(created.Link.ID))+"/accept", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/friend-requests/pending", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"count":1`)

	w, env = s.do(http.MethodPut, "/api/v1/friend-requests/"+strconv.Itoa(int(created.Link.ID))+"/accept", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"status":"accepted"`)

	// 已是好友，再次请求为冲突
	w, env = s.do(http.MethodPost, "/api/v1/friend-requests", aliceToken, gin.H{"recipientId": bobID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 409, env.Code)

	w, env = s.do(http.MethodGet, "/api/v1/friends", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)

	w, env = s.do(http.MethodGet, "/api/v1/friends/status/"+strconv.Itoa(int(bobID)), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"accepted"`)

	w, _ = s.do(http.MethodDelete, "/api/v1/friends/"+strconv.Itoa(int(bobID)), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodDelete, "/api/v1/friends/"+strconv.Itoa(int(bobID)), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessages(t *testing.T) {
	s := newTestServer(t)
	aliceToken, aliceID := s.register("alice")
	bobToken, bobID := s.register("bob")

	w, env := s.do(http.MethodPost, "/api/v1/messages", aliceToken, gin.H{"recipientId": bobID, "body": "hi bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sent struct {
		Message struct {
			ID uint `json:"id"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))

	w, _ = s.do(http.MethodPost, "/api/v1/messages", aliceToken, gin.H{"recipientId": 9999, "body": "anyone?"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodPost, "/api/v1/messages", aliceToken, gin.H{"recipientId": bobID, "body": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "body", env.Field)

	w, env = s.do(http.MethodGet, "/api/v1/messages/unread/count", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"unreadCount":1}`, string(env.Data))

	w, env = s.do(http.MethodGet, "/api/v1/messages/conversation/"+strconv.Itoa(int(aliceID))+"?limit=10", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"count":1`)

	w, env = s.do(http.MethodGet, "/api/v1/messages/unread/count", bobToken, nil)
	assert.JSONEq(t, `{"unreadCount":0}`, string(env.Data))

	w, env = s.do(http.MethodGet, "/api/v1/messages", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"lastMessage":"hi bob"`)

	msgPath := "/api/v1/messages/" + strconv.Itoa(int(sent.Message.ID))
	w, _ = s.do(http.MethodDelete, msgPath, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodDelete, msgPath, aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodDelete, "/api/v1/messages/abc", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", env.Field)
}

func TestGoalsAndActivities(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("carol")

	w, env := s.do(http.MethodPost, "/api/v1/goals", token, gin.H{
		"title":       "Read 5 books",
		"targetValue": 5,
		"targetUnit":  "books",
		"endDate":     time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Goal struct {
			ID uint `json:"id"`
		} `json:"goal"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	goalPath := "/api/v1/goals/" + strconv.Itoa(int(created.Goal.ID))

	w, env = s.do(http.MethodPut, goalPath+"/progress", token, gin.H{"progress": 0})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env = s.do(http.MethodPut, goalPath+"/status", token, gin.H{"status": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status", env.Field)
	w, env = s.do(http.MethodPut, goalPath+"/status", token, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"completed"`)

	w, _ = s.do(http.MethodPost, "/api/v1/activities", token, gin.H{
		"title":           "Algebra",
		"activityType":    "study",
		"subject":         "math",
		"durationMinutes": 45,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	today := time.Now().Format("2006-01-02")
	w, env = s.do(http.MethodGet, "/api/v1/activities?startDate="+today+"&endDate="+today, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"count":1`)

	w, env = s.do(http.MethodGet, "/api/v1/activities?startDate=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "startDate", env.Field)

	w, env = s.do(http.MethodGet, "/api/v1/analytics/weekly", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"totalStudyHours":0.75`)
}

func TestMemoryUpload(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("dave")

	upload := func(filename string, content []byte) (*httptest.ResponseRecorder, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "graduation"))
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/memories", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return s.serve(req)
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	w, env := upload("photo.png", png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"imageRef":"/uploads/memories/`)

	w, env = upload("notes.png", []byte("just some text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "image", env.Field)

	w, env = s.do(http.MethodGet, "/api/v1/memories", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"count":1`)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"database":"ok"`)
}

func TestBindError(t *testing.T) {
	err := bindError(errors.New("EOF"))
	assert.Contains(t, err.Error(), "invalid request body")
}

func TestProfileAndSearch(t *testing.T) {
	s := newTestServer(t)
	aliceToken, _ := s.register("alice")
	_, bobID := s.register("bobby")

	w, env := s.do(http.MethodGet, "/api/v1/users/profile/"+strconv.Itoa(int(bobID)), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"friendStatus":"none"`)
	assert.NotContains(t, string(env.Data), "bobby@example.com")

	w, _ = s.do(http.MethodGet, "/api/v1/users/profile/9999", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/users/search?query=bo", aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"count":1`)

	w, env = s.do(http.MethodGet, "/api/v1/users/search?query=b", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "query", env.Field)

	w, env = s.do(http.MethodPut, "/api/v1/users/me", aliceToken, gin.H{"bio": "likes math"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"bio":"likes math"`)

	w, env = s.do(http.MethodGet, "/api/v1/users/online", aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"count":0`)
}
