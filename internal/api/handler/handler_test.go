package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"thesis-hub/backend/internal/dto"
	"thesis-hub/backend/internal/service"
	"thesis-hub/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock TopicService ──

type mockTopicService struct {
	topicResult *dto.TopicResponse
	topicErr    error
	listResult  []dto.TopicResponse
	listErr     error
	tcResult    *dto.TopicCouncilResponse
	tcErr       error
}

func (m *mockTopicService) Get(_ context.Context, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) List(_ context.Context, _, _ string) ([]dto.TopicResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockTopicService) SubmitForReview(_ context.Context, _, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) Approve(_ context.Context, _, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) ApproveStage2(_ context.Context, _, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) Reject(_ context.Context, _ string, _ *dto.RejectTopicRequest, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) MoveToInProgress(_ context.Context, _, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) Complete(_ context.Context, _, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) UpdateProgress(_ context.Context, _ string, _ *dto.UpdateProgressRequest, _ string) (*dto.TopicResponse, error) {
	return m.topicResult, m.topicErr
}
func (m *mockTopicService) PromoteStage(_ context.Context, _, _ string) (*dto.TopicCouncilResponse, error) {
	return m.tcResult, m.tcErr
}

// ── Mock CouncilService ──

type mockCouncilService struct {
	councilResult *dto.CouncilResponse
	councilErr    error
	listResult    []dto.CouncilResponse
	listErr       error
	defenceResult *dto.DefenceResponse
	defenceErr    error
	removeErr     error
	assignErr     error
	removeTcErr   error
	selectResult  *dto.TopicCouncilResponse
	selectErr     error
}

func (m *mockCouncilService) Create(_ context.Context, _ *dto.CreateCouncilRequest, _ string) (*dto.CouncilResponse, error) {
	return m.councilResult, m.councilErr
}
func (m *mockCouncilService) Get(_ context.Context, _ string) (*dto.CouncilResponse, error) {
	return m.councilResult, m.councilErr
}
func (m *mockCouncilService) List(_ context.Context, _ string) ([]dto.CouncilResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCouncilService) AddDefence(_ context.Context, _ string, _ *dto.AddDefenceRequest, _ string) (*dto.DefenceResponse, error) {
	return m.defenceResult, m.defenceErr
}
func (m *mockCouncilService) RemoveDefence(_ context.Context, _, _ string) error {
	return m.removeErr
}
func (m *mockCouncilService) AssignTopic(_ context.Context, _, _, _ string) error {
	return m.assignErr
}
func (m *mockCouncilService) RemoveTopic(_ context.Context, _, _, _ string) error {
	return m.removeTcErr
}
func (m *mockCouncilService) Schedule(_ context.Context, _ string, _ *dto.ScheduleCouncilRequest, _ string) (*dto.CouncilResponse, error) {
	return m.councilResult, m.councilErr
}
func (m *mockCouncilService) SelectAssignable(_ context.Context, _ string) (*dto.TopicCouncilResponse, error) {
	return m.selectResult, m.selectErr
}

// ── Mock GradeService ──

type mockGradeService struct {
	gradeResult *dto.GradeDefenceResponse
	gradeErr    error
	avgResult   *dto.CouncilAverageResponse
	avgErr      error
}

func (m *mockGradeService) CreateGradeDefence(_ context.Context, _ *dto.CreateGradeDefenceRequest, _ string) (*dto.GradeDefenceResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradeService) GetGradeDefence(_ context.Context, _ string) (*dto.GradeDefenceResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradeService) UpdateGradeDefence(_ context.Context, _ string, _ *dto.UpdateGradeDefenceRequest, _ string) (*dto.GradeDefenceResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradeService) AddCriterion(_ context.Context, _ string, _ *dto.AddCriterionRequest, _ string) (*dto.GradeDefenceResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradeService) UpdateCriterion(_ context.Context, _ string, _ *dto.UpdateCriterionRequest, _ string) (*dto.GradeDefenceResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradeService) DeleteCriterion(_ context.Context, _, _ string) (*dto.GradeDefenceResponse, error) {
	return m.gradeResult, m.gradeErr
}
func (m *mockGradeService) GetCouncilAverage(_ context.Context, _ string) (*dto.CouncilAverageResponse, error) {
	return m.avgResult, m.avgErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportCouncilReport(_ context.Context, _ []string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportCalendar(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func newAuthedEngine() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "user-001")
		c.Next()
	})
	return r
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// TopicHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTopicHandler_Approve_Success(t *testing.T) {
	mock := &mockTopicService{
		topicResult: &dto.TopicResponse{ID: "topic-001", Status: "APPROVED_1"},
	}
	h := NewTopicHandler(mock, &mockCouncilService{})

	r := newAuthedEngine()
	r.POST("/topics/:id/approve", h.ApproveTopic)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/topics/topic-001/approve", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestTopicHandler_Approve_IllegalTransition(t *testing.T) {
	mock := &mockTopicService{topicErr: service.ErrTopicTransition}
	h := NewTopicHandler(mock, &mockCouncilService{})

	r := newAuthedEngine()
	r.POST("/topics/:id/approve", h.ApproveTopic)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/topics/topic-001/approve", nil))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestTopicHandler_Approve_Unauthenticated(t *testing.T) {
	h := NewTopicHandler(&mockTopicService{}, &mockCouncilService{})

	// 未注入 user_id
	r := gin.New()
	r.POST("/topics/:id/approve", h.ApproveTopic)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/topics/topic-001/approve", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestTopicHandler_Reject_MissingReason(t *testing.T) {
	h := NewTopicHandler(&mockTopicService{}, &mockCouncilService{})

	r := newAuthedEngine()
	r.POST("/topics/:id/reject", h.RejectTopic)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/topics/topic-001/reject", jsonBody(gin.H{}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTopicHandler_PromoteStage_Conflict(t *testing.T) {
	mock := &mockTopicService{tcErr: service.ErrStageAlreadyPromoted}
	h := NewTopicHandler(mock, &mockCouncilService{})

	r := newAuthedEngine()
	r.POST("/topics/:id/promote", h.PromoteStage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/topics/topic-001/promote", nil))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestTopicHandler_GetAssignable_NoneAvailable(t *testing.T) {
	// Service 返回 nil 表示无可分配实例，响应 data 为 null
	h := NewTopicHandler(&mockTopicService{}, &mockCouncilService{selectResult: nil})

	r := newAuthedEngine()
	r.GET("/topics/:id/assignable", h.GetAssignable)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/topics/topic-001/assignable", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Data != nil {
		t.Errorf("expected null data, got %v", resp.Data)
	}
}

// ═══════════════════════════════════════════════════════════
// CouncilHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCouncilHandler_AddDefence_Locked(t *testing.T) {
	mock := &mockCouncilService{defenceErr: service.ErrCouncilLocked}
	h := NewCouncilHandler(mock)

	r := newAuthedEngine()
	r.POST("/councils/:id/defences", h.AddDefence)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/councils/council-001/defences", jsonBody(dto.AddDefenceRequest{
		TeacherCode: "4b3f9e4e-54a4-4a1e-9d2f-1f6b6e2f8a01",
		Position:    "MEMBER",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12002 {
		t.Errorf("expected error code 12002, got %d", resp.Code)
	}
}

func TestCouncilHandler_AddDefence_BadPosition(t *testing.T) {
	h := NewCouncilHandler(&mockCouncilService{})

	r := newAuthedEngine()
	r.POST("/councils/:id/defences", h.AddDefence)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/councils/council-001/defences", jsonBody(dto.AddDefenceRequest{
		TeacherCode: "4b3f9e4e-54a4-4a1e-9d2f-1f6b6e2f8a01",
		Position:    "CHAIRMAN",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// oneof 绑定校验拦截
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCouncilHandler_Schedule_Success(t *testing.T) {
	mock := &mockCouncilService{
		councilResult: &dto.CouncilResponse{ID: "council-001", Locked: true},
	}
	h := NewCouncilHandler(mock)

	r := newAuthedEngine()
	r.PUT("/councils/:id/schedule", h.ScheduleCouncil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/councils/council-001/schedule", jsonBody(dto.ScheduleCouncilRequest{
		TimeStart: "2026-09-15T08:00:00Z",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCouncilHandler_AssignTopic_Claimed(t *testing.T) {
	mock := &mockCouncilService{assignErr: service.ErrTopicCouncilClaimed}
	h := NewCouncilHandler(mock)

	r := newAuthedEngine()
	r.POST("/councils/:id/topics", h.AssignTopic)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/councils/council-001/topics", jsonBody(dto.AssignTopicRequest{
		TopicCouncilCode: "4b3f9e4e-54a4-4a1e-9d2f-1f6b6e2f8a02",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// GradeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestGradeHandler_CreateGrade_Duplicate(t *testing.T) {
	mock := &mockGradeService{gradeErr: service.ErrGradeDuplicate}
	h := NewGradeHandler(mock)

	r := newAuthedEngine()
	r.POST("/grades", h.CreateGrade)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/grades", jsonBody(dto.CreateGradeDefenceRequest{
		DefenceCode:    "4b3f9e4e-54a4-4a1e-9d2f-1f6b6e2f8a01",
		EnrollmentCode: "4b3f9e4e-54a4-4a1e-9d2f-1f6b6e2f8a02",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13002 {
		t.Errorf("expected error code 13002, got %d", resp.Code)
	}
}

func TestGradeHandler_AddCriterion_Invalid(t *testing.T) {
	mock := &mockGradeService{gradeErr: service.ErrCriterionInvalid}
	h := NewGradeHandler(mock)

	r := newAuthedEngine()
	r.POST("/grades/:id/criteria", h.AddCriterion)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/grades/grade-001/criteria", jsonBody(dto.AddCriterionRequest{
		Name: "内容", Score: 8, MaxScore: 10,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGradeHandler_GetCouncilAverage(t *testing.T) {
	avg := 17.0
	mock := &mockGradeService{
		avgResult: &dto.CouncilAverageResponse{EnrollmentCode: "enroll-001", Average: &avg},
	}
	h := NewGradeHandler(mock)

	r := newAuthedEngine()
	r.GET("/enrollments/:id/average", h.GetCouncilAverage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/enrollments/enroll-001/average", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportCouncilReport_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("PK fake xlsx content"),
		filename: "Hoi_dong_Chi_tiet_2026-08-29.xlsx",
	}
	h := NewExportHandler(mock)

	r := newAuthedEngine()
	r.GET("/export/councils", h.ExportCouncilReport)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/export/councils?ids=council-001", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected Content-Type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header to be set")
	}
}

func TestExportHandler_ExportCalendar_NoScheduled(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoScheduled}
	h := NewExportHandler(mock)

	r := newAuthedEngine()
	r.GET("/export/calendar", h.ExportCalendar)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/export/calendar", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

