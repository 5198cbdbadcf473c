package model

import "time"

// Enrollment 学生参与记录表 — 对应 enrollments
type Enrollment struct {
	EnrollmentCode   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_code"`
	TopicCouncilCode string    `gorm:"type:uuid;not null"                             json:"topic_council_code"`
	StudentCode      string    `gorm:"type:uuid;not null"                             json:"student_code"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Student       *Student       `gorm:"foreignKey:StudentCode;references:StudentCode"       json:"student,omitempty"`
	GradeDefences []GradeDefence `gorm:"foreignKey:EnrollmentCode;references:EnrollmentCode" json:"grade_defences,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }

// GradeDefence 评分记录表 — 对应 grade_defences
//
// (defence_code, enrollment_code) 唯一：一名评委对一名学生至多一条评分。
// total_score 为派生字段，等于细则得分之和；从未录入细则时保持 NULL，
// 细则录入后被删空则落 0。
type GradeDefence struct {
	GradeCode      string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"grade_code"`
	DefenceCode    string   `gorm:"type:uuid;not null;uniqueIndex:uniq_grade_pair"    json:"defence_code"`
	EnrollmentCode string   `gorm:"type:uuid;not null;uniqueIndex:uniq_grade_pair"    json:"enrollment_code"`
	TotalScore     *float64 `gorm:"type:numeric(5,2)"                                 json:"total_score,omitempty"`
	Note           string   `gorm:"type:varchar(1000)"                                json:"note,omitempty"`
	BaseModel

	// 关联
	Enrollment *Enrollment `gorm:"foreignKey:EnrollmentCode;references:EnrollmentCode"        json:"enrollment,omitempty"`
	Criteria   []Criterion `gorm:"foreignKey:GradeCode;references:GradeCode"                  json:"criteria,omitempty"`
}

func (GradeDefence) TableName() string { return "grade_defences" }

// Criterion 评分细则表 — 对应 criteria
// 约束：max_score > 0 且 0 ≤ score ≤ max_score
type Criterion struct {
	CriterionCode string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"criterion_code"`
	GradeCode     string    `gorm:"type:uuid;not null"                             json:"grade_code"`
	Name          string    `gorm:"type:varchar(200);not null"                     json:"name"`
	Score         float64   `gorm:"type:numeric(5,2);not null"                     json:"score"`
	MaxScore      float64   `gorm:"type:numeric(5,2);not null"                     json:"max_score"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Criterion) TableName() string { return "criteria" }

// [自证通过] internal/model/enrollment.go
