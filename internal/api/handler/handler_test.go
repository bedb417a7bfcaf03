package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/dto"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/service"
	pkgerrors "github.com/ryanson7/schedule-app-v3-sub004/pkg/errors"
	"github.com/ryanson7/schedule-app-v3-sub004/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	logoutErr        error
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	createResult  *dto.ScheduleResponse
	createErr     error
	actionResult  *dto.ScheduleResponse
	actionErr     error
	updateResult  *dto.ScheduleResponse
	updateErr     error
	getResult     *dto.ScheduleResponse
	getErr        error
	listResult    []dto.ScheduleResponse
	listTotal     int64
	listErr       error
	requests      []dto.ScheduleResponse
	requestsTotal int64
	requestsErr   error
	history       []dto.ScheduleHistoryResponse
	historyTotal  int64
	historyErr    error

	lastAction *dto.SubmitActionRequest
	lastActor  service.Actor
}

func (m *mockScheduleService) Create(_ context.Context, _ *dto.CreateScheduleRequest, actor service.Actor) (*dto.ScheduleResponse, error) {
	m.lastActor = actor
	return m.createResult, m.createErr
}
func (m *mockScheduleService) SubmitAction(_ context.Context, _ string, req *dto.SubmitActionRequest, actor service.Actor) (*dto.ScheduleResponse, error) {
	m.lastAction = req
	m.lastActor = actor
	return m.actionResult, m.actionErr
}
func (m *mockScheduleService) Update(_ context.Context, _ string, _ *dto.UpdateScheduleRequest, actor service.Actor) (*dto.ScheduleResponse, error) {
	m.lastActor = actor
	return m.updateResult, m.updateErr
}
func (m *mockScheduleService) Get(_ context.Context, _ string) (*dto.ScheduleResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockScheduleService) List(_ context.Context, _ *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockScheduleService) ListPendingRequests(_ context.Context, _ *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error) {
	return m.requests, m.requestsTotal, m.requestsErr
}
func (m *mockScheduleService) ListHistory(_ context.Context, _ string, _ *dto.ScheduleHistoryListRequest) ([]dto.ScheduleHistoryResponse, int64, error) {
	return m.history, m.historyTotal, m.historyErr
}

// ── Mock SplitService ──

type mockSplitService struct {
	splitResult    *dto.SplitScheduleResponse
	splitErr       error
	segmentsResult []dto.ScheduleResponse
	segmentsErr    error
}

func (m *mockSplitService) Split(_ context.Context, _ string, _ *dto.SplitScheduleRequest, _ service.Actor) (*dto.SplitScheduleResponse, error) {
	return m.splitResult, m.splitErr
}
func (m *mockSplitService) ListSegments(_ context.Context, _ string) ([]dto.ScheduleResponse, error) {
	return m.segmentsResult, m.segmentsErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// setAuth 模拟 JWT 中间件注入的上下文
func setAuth(rawRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("role", rawRole)
		c.Set("name", "测试用户")
		c.Set("jti", "test-jti")
		c.Set("token_expires_at", time.Now().Add(15*time.Minute))
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler 测试
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    7200,
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "linana",
		Password: "pass123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("期望 code=0，实际=%d", resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "linana",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(gin.H{"username": "linana"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler 测试
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_SubmitAction_PassesActor(t *testing.T) {
	mock := &mockScheduleService{
		actionResult: &dto.ScheduleResponse{ID: "s-1", ApprovalStatus: "approved"},
	}
	h := NewScheduleHandler(mock, &mockSplitService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/s-1/actions", jsonBody(dto.SubmitActionRequest{
		Action: "approve",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setAuth("system_admin"))
	r.POST("/schedules/:id/actions", h.SubmitAction)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if mock.lastActor.ID != "test-user-id" || mock.lastActor.RawRole != "system_admin" {
		t.Errorf("操作者身份应透传到服务层: %+v", mock.lastActor)
	}
}

func TestScheduleHandler_SubmitAction_RejectionMapped(t *testing.T) {
	mock := &mockScheduleService{
		actionErr: pkgerrors.NewRejection(pkgerrors.CodeInvalidTransition, "当前状态下此角色不可执行该动作").
			WithContext("manager", "approval_requested", "approve"),
	}
	h := NewScheduleHandler(mock, &mockSplitService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/s-1/actions", jsonBody(dto.SubmitActionRequest{
		Action: "approve",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setAuth("academy_manager"))
	r.POST("/schedules/:id/actions", h.SubmitAction)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("INVALID_TRANSITION 期望 400，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20002 {
		t.Errorf("期望业务码 20002，实际=%d", resp.Code)
	}
}

func TestScheduleHandler_SubmitAction_StaleStateMapsTo409(t *testing.T) {
	mock := &mockScheduleService{
		actionErr: pkgerrors.NewRejection(pkgerrors.CodeStaleState, "排期已被并发修改"),
	}
	h := NewScheduleHandler(mock, &mockSplitService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/s-1/actions", jsonBody(dto.SubmitActionRequest{
		Action: "approve",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setAuth("system_admin"))
	r.POST("/schedules/:id/actions", h.SubmitAction)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("STALE_STATE 期望 409，实际=%d", w.Code)
	}
}

func TestScheduleHandler_Get_NotFoundMapsTo404(t *testing.T) {
	mock := &mockScheduleService{
		getErr: pkgerrors.NewRejection(pkgerrors.CodeNotFound, "排期不存在"),
	}
	h := NewScheduleHandler(mock, &mockSplitService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/schedules/nonexistent", nil)

	r := gin.New()
	r.GET("/schedules/:id", h.Get)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("NOT_FOUND 期望 404，实际=%d", w.Code)
	}
}

func TestScheduleHandler_SubmitAction_Unauthenticated(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{}, &mockSplitService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/s-1/actions", jsonBody(dto.SubmitActionRequest{
		Action: "approve",
	}))
	req.Header.Set("Content-Type", "application/json")

	// 无认证中间件注入
	r := gin.New()
	r.POST("/schedules/:id/actions", h.SubmitAction)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("未认证期望 401，实际=%d", w.Code)
	}
}

func TestScheduleHandler_Split_Success(t *testing.T) {
	mock := &mockSplitService{
		splitResult: &dto.SplitScheduleResponse{
			Segments: []dto.ScheduleResponse{
				{ID: "seg-1", SegmentOrder: 1},
				{ID: "seg-2", SegmentOrder: 2},
			},
			SegmentCount: 2,
		},
	}
	h := NewScheduleHandler(&mockScheduleService{}, mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/s-1/split", jsonBody(dto.SplitScheduleRequest{
		SplitPoints: []string{"10:00"},
		Reason:      "设备档期冲突",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setAuth("system_admin"))
	r.POST("/schedules/:id/split", h.Split)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
}

func TestScheduleHandler_Split_AlreadySplitMapped(t *testing.T) {
	mock := &mockSplitService{
		splitErr: pkgerrors.NewRejection(pkgerrors.CodeAlreadySplit, "该排期已参与过拆分"),
	}
	h := NewScheduleHandler(&mockScheduleService{}, mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/s-1/split", jsonBody(dto.SplitScheduleRequest{
		SplitPoints: []string{"10:00"},
		Reason:      "再次拆分",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setAuth("system_admin"))
	r.POST("/schedules/:id/split", h.Split)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("ALREADY_SPLIT 期望 400，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20003 {
		t.Errorf("期望业务码 20003，实际=%d", resp.Code)
	}
}

func TestScheduleHandler_Split_MissingReason(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{}, &mockSplitService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/s-1/split", jsonBody(gin.H{
		"split_points": []string{"10:00"},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setAuth("system_admin"))
	r.POST("/schedules/:id/split", h.Split)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少理由期望 400，实际=%d", w.Code)
	}
}
