package dto

// ── 评分模块 DTO ──

// CreateGradeDefenceRequest 创建评分记录请求
type CreateGradeDefenceRequest struct {
	DefenceCode    string `json:"defence_code"    binding:"required,uuid"`
	EnrollmentCode string `json:"enrollment_code" binding:"required,uuid"`
	Note           string `json:"note"            binding:"max=1000"`
}

// UpdateGradeDefenceRequest 更新评分备注请求
type UpdateGradeDefenceRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

// AddCriterionRequest 添加评分细则请求
type AddCriterionRequest struct {
	Name     string  `json:"name"      binding:"required,min=1,max=200"`
	Score    float64 `json:"score"     binding:"min=0"`
	MaxScore float64 `json:"max_score" binding:"required,gt=0"`
}

// UpdateCriterionRequest 更新评分细则请求（字段可选）
type UpdateCriterionRequest struct {
	Name     *string  `json:"name"      binding:"omitempty,min=1,max=200"`
	Score    *float64 `json:"score"     binding:"omitempty,min=0"`
	MaxScore *float64 `json:"max_score" binding:"omitempty,gt=0"`
}

// GradeDefenceResponse 评分记录响应
type GradeDefenceResponse struct {
	ID             string              `json:"id"`
	DefenceCode    string              `json:"defence_code"`
	EnrollmentCode string              `json:"enrollment_code"`
	TotalScore     *float64            `json:"total_score,omitempty"`
	Note           string              `json:"note,omitempty"`
	Criteria       []CriterionResponse `json:"criteria,omitempty"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
}

// CriterionResponse 评分细则响应
type CriterionResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

// CouncilAverageResponse 委员会均分响应
// Average 为空表示该学生尚无任何评分记录
type CouncilAverageResponse struct {
	EnrollmentCode string   `json:"enrollment_code"`
	Average        *float64 `json:"average"`
}

// [自证通过] internal/dto/grade.go
