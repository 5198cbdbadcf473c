package model

import "time"

// Council 答辩委员会表 — 对应 councils
//
// time_start 为排期时间，同时也是锁标志：
// 一旦非空，委员会成员与课题名册全部冻结为只读。
// 不额外冗余存储锁状态，Locked() 由 time_start 推导。
type Council struct {
	CouncilCode  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"council_code"`
	Title        string     `gorm:"type:varchar(200);not null"                     json:"title"`
	MajorCode    string     `gorm:"type:varchar(50);not null"                      json:"major_code"`
	SemesterCode string     `gorm:"type:varchar(50);not null"                      json:"semester_code"`
	TimeStart    *time.Time `json:"time_start,omitempty"`
	TimeEnd      *time.Time `json:"time_end,omitempty"`
	VersionedModel

	// 关联
	Defences      []Defence      `gorm:"foreignKey:CouncilCode;references:CouncilCode" json:"defences,omitempty"`
	TopicCouncils []TopicCouncil `gorm:"foreignKey:CouncilCode;references:CouncilCode" json:"topic_councils,omitempty"`
}

func (Council) TableName() string { return "councils" }

// Locked 委员会是否已排期（排期后成员与名册只读）
func (c *Council) Locked() bool {
	return c.TimeStart != nil
}

// Defence 委员会席位表 — 对应 defences
// (council_code, teacher_code) 唯一：一名教师在同一委员会至多一个席位
type Defence struct {
	DefenceCode string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"defence_code"`
	CouncilCode string          `gorm:"type:uuid;not null;uniqueIndex:uniq_defence_teacher"     json:"council_code"`
	TeacherCode string          `gorm:"type:uuid;not null;uniqueIndex:uniq_defence_teacher"     json:"teacher_code"`
	Position    DefencePosition `gorm:"type:varchar(20);not null"                               json:"position"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"                      json:"created_at"`
	CreatedBy   *string         `gorm:"type:uuid"                                               json:"created_by,omitempty"`

	// 关联
	Teacher       *Teacher       `gorm:"foreignKey:TeacherCode;references:TeacherCode" json:"teacher,omitempty"`
	GradeDefences []GradeDefence `gorm:"foreignKey:DefenceCode;references:DefenceCode" json:"grade_defences,omitempty"`
}

func (Defence) TableName() string { return "defences" }

// [自证通过] internal/model/council.go
