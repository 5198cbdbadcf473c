package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"thesis-hub/backend/internal/dto"
	"thesis-hub/backend/internal/service"
	"thesis-hub/backend/pkg/response"
)

// GradeHandler 评分模块 HTTP 处理器
type GradeHandler struct {
	gradeSvc service.GradeService
}

// NewGradeHandler 创建 GradeHandler
func NewGradeHandler(gradeSvc service.GradeService) *GradeHandler {
	return &GradeHandler{gradeSvc: gradeSvc}
}

// CreateGrade 创建评分记录
// POST /api/v1/grades
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	var req dto.CreateGradeDefenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.CreateGradeDefence(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}
	response.Created(c, grade)
}

// GetGrade 获取评分记录详情（含细则）
// GET /api/v1/grades/:id
func (h *GradeHandler) GetGrade(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "评分ID不能为空")
		return
	}

	grade, err := h.gradeSvc.GetGradeDefence(c.Request.Context(), id)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}
	response.OK(c, grade)
}

// UpdateGrade 更新评分备注
// PUT /api/v1/grades/:id
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "评分ID不能为空")
		return
	}

	var req dto.UpdateGradeDefenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.UpdateGradeDefence(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}
	response.OK(c, grade)
}

// AddCriterion 添加评分细则
// POST /api/v1/grades/:id/criteria
func (h *GradeHandler) AddCriterion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "评分ID不能为空")
		return
	}

	var req dto.AddCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.AddCriterion(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}
	response.Created(c, grade)
}

// UpdateCriterion 更新评分细则
// PUT /api/v1/criteria/:id
func (h *GradeHandler) UpdateCriterion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "细则ID不能为空")
		return
	}

	var req dto.UpdateCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.UpdateCriterion(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}
	response.OK(c, grade)
}

// DeleteCriterion 删除评分细则
// DELETE /api/v1/criteria/:id
func (h *GradeHandler) DeleteCriterion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "细则ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.DeleteCriterion(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}
	response.OK(c, grade)
}

// GetCouncilAverage 获取学生委员会均分
// GET /api/v1/enrollments/:id/average
func (h *GradeHandler) GetCouncilAverage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "参与记录ID不能为空")
		return
	}

	result, err := h.gradeSvc.GetCouncilAverage(c.Request.Context(), id)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}
	response.OK(c, result)
}

// handleGradeError 统一处理评分模块业务错误
func (h *GradeHandler) handleGradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGradeNotFound):
		response.NotFound(c, 13001, "评分记录不存在")
	case errors.Is(err, service.ErrGradeDuplicate):
		response.Conflict(c, 13002, "该评委对该学生已有评分记录")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 13003, "学生参与记录不存在")
	case errors.Is(err, service.ErrCriterionNotFound):
		response.NotFound(c, 13004, "评分细则不存在")
	case errors.Is(err, service.ErrCriterionInvalid):
		response.BadRequest(c, 13005, "评分细则不合法")
	case errors.Is(err, service.ErrDefenceNotFound):
		response.NotFound(c, 12003, "委员会席位不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/grade_handler.go
