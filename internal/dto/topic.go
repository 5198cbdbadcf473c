package dto

// ── 课题模块 DTO ──

// RejectTopicRequest 驳回课题请求
type RejectTopicRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=500"`
}

// UpdateProgressRequest 更新课题进度请求（仅展示用途，不影响生命周期）
type UpdateProgressRequest struct {
	PercentStage1 *int `json:"percent_stage1" binding:"omitempty,min=0,max=100"`
	PercentStage2 *int `json:"percent_stage2" binding:"omitempty,min=0,max=100"`
}

// TopicResponse 课题信息响应
type TopicResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	MajorCode     string  `json:"major_code"`
	SemesterCode  string  `json:"semester_code"`
	PercentStage1 int     `json:"percent_stage1"`
	PercentStage2 int     `json:"percent_stage2"`
	RejectReason  *string `json:"reject_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// TopicCouncilResponse 课题阶段实例响应
type TopicCouncilResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Stage       string  `json:"stage"`
	TopicCode   string  `json:"topic_code"`
	CouncilCode *string `json:"council_code,omitempty"`
	TimeStart   *string `json:"time_start,omitempty"`
	TimeEnd     *string `json:"time_end,omitempty"`
}

// [自证通过] internal/dto/topic.go
