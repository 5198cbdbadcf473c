package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"thesis-hub/backend/internal/dto"
	"thesis-hub/backend/internal/model"
	"thesis-hub/backend/internal/repository"
	"thesis-hub/backend/pkg/redis"
)

// ── 评分模块业务错误 ──

var (
	ErrGradeNotFound      = errors.New("评分记录不存在")
	ErrGradeDuplicate     = errors.New("该评委对该学生已有评分记录")
	ErrEnrollmentNotFound = errors.New("学生参与记录不存在")
	ErrCriterionNotFound  = errors.New("评分细则不存在")
	ErrCriterionInvalid   = errors.New("评分细则不合法：满分须为正且得分在 0 与满分之间")
)

// GradeService 评分聚合业务接口
//
// total_score 是派生值：永远等于当前细则得分之和。从未录入细则的
// 记录保持 NULL；一旦发生过细则写入，删空后总分为 0。
// 细则写入与总分重算必须在同一事务内完成，外部读不到中间态。
type GradeService interface {
	CreateGradeDefence(ctx context.Context, req *dto.CreateGradeDefenceRequest, callerID string) (*dto.GradeDefenceResponse, error)
	GetGradeDefence(ctx context.Context, id string) (*dto.GradeDefenceResponse, error)
	UpdateGradeDefence(ctx context.Context, id string, req *dto.UpdateGradeDefenceRequest, callerID string) (*dto.GradeDefenceResponse, error)
	AddCriterion(ctx context.Context, gradeID string, req *dto.AddCriterionRequest, callerID string) (*dto.GradeDefenceResponse, error)
	UpdateCriterion(ctx context.Context, criterionID string, req *dto.UpdateCriterionRequest, callerID string) (*dto.GradeDefenceResponse, error)
	DeleteCriterion(ctx context.Context, criterionID string, callerID string) (*dto.GradeDefenceResponse, error)
	// GetCouncilAverage 学生委员会均分：所有非空 total_score 的算术平均，
	// 四舍五入到两位小数；没有任何已评总分时返回 nil
	GetCouncilAverage(ctx context.Context, enrollmentCode string) (*dto.CouncilAverageResponse, error)
}

type gradeService struct {
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewGradeService 创建 GradeService 实例；cache 允许为 nil（降级为直查库）
func NewGradeService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger) GradeService {
	return &gradeService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── 评分记录 ──────────────────────

func (s *gradeService) CreateGradeDefence(ctx context.Context, req *dto.CreateGradeDefenceRequest, callerID string) (*dto.GradeDefenceResponse, error) {
	if _, err := s.repo.Enrollment.GetByID(ctx, req.EnrollmentCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询参与记录失败", zap.String("id", req.EnrollmentCode), zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Defence.GetByID(ctx, req.DefenceCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenceNotFound
		}
		s.logger.Error("查询席位失败", zap.String("id", req.DefenceCode), zap.Error(err))
		return nil, err
	}

	grade := &model.GradeDefence{
		DefenceCode:    req.DefenceCode,
		EnrollmentCode: req.EnrollmentCode,
		Note:           req.Note,
	}
	grade.CreatedBy = &callerID
	grade.UpdatedBy = &callerID

	// (defence_code, enrollment_code) 唯一约束兜底并发下的重复评分
	if err := s.repo.Grade.Create(ctx, grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGradeDuplicate
		}
		s.logger.Error("创建评分记录失败", zap.Error(err))
		return nil, err
	}

	s.invalidateAverage(ctx, grade.EnrollmentCode)
	return toGradeResponse(grade), nil
}

func (s *gradeService) GetGradeDefence(ctx context.Context, id string) (*dto.GradeDefenceResponse, error) {
	grade, err := s.repo.Grade.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGradeNotFound
		}
		s.logger.Error("查询评分记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGradeResponse(grade), nil
}

func (s *gradeService) UpdateGradeDefence(ctx context.Context, id string, req *dto.UpdateGradeDefenceRequest, callerID string) (*dto.GradeDefenceResponse, error) {
	grade, err := s.repo.Grade.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGradeNotFound
		}
		s.logger.Error("查询评分记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	grade.Note = req.Note
	grade.UpdatedBy = &callerID
	if err := s.repo.Grade.Update(ctx, grade); err != nil {
		s.logger.Error("更新评分备注失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGradeResponse(grade), nil
}

// ────────────────────── 评分细则 ──────────────────────

// AddCriterion 添加细则并在同一事务内重算总分
func (s *gradeService) AddCriterion(ctx context.Context, gradeID string, req *dto.AddCriterionRequest, callerID string) (*dto.GradeDefenceResponse, error) {
	if err := validateCriterion(req.Name, req.Score, req.MaxScore); err != nil {
		return nil, err
	}

	grade, err := s.repo.Grade.GetByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGradeNotFound
		}
		s.logger.Error("查询评分记录失败", zap.String("id", gradeID), zap.Error(err))
		return nil, err
	}

	criterion := &model.Criterion{
		GradeCode: gradeID,
		Name:      req.Name,
		Score:     req.Score,
		MaxScore:  req.MaxScore,
	}

	if err := s.criterionTx(ctx, grade, callerID, func(txRepo *repository.Repository) error {
		return txRepo.Criterion.Create(ctx, criterion)
	}); err != nil {
		return nil, err
	}
	return s.GetGradeDefence(ctx, gradeID)
}

func (s *gradeService) UpdateCriterion(ctx context.Context, criterionID string, req *dto.UpdateCriterionRequest, callerID string) (*dto.GradeDefenceResponse, error) {
	criterion, err := s.repo.Criterion.GetByID(ctx, criterionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriterionNotFound
		}
		s.logger.Error("查询评分细则失败", zap.String("id", criterionID), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		criterion.Name = *req.Name
	}
	if req.Score != nil {
		criterion.Score = *req.Score
	}
	if req.MaxScore != nil {
		criterion.MaxScore = *req.MaxScore
	}
	if err := validateCriterion(criterion.Name, criterion.Score, criterion.MaxScore); err != nil {
		return nil, err
	}

	grade, err := s.repo.Grade.GetByID(ctx, criterion.GradeCode)
	if err != nil {
		s.logger.Error("查询评分记录失败", zap.String("id", criterion.GradeCode), zap.Error(err))
		return nil, err
	}

	if err := s.criterionTx(ctx, grade, callerID, func(txRepo *repository.Repository) error {
		return txRepo.Criterion.Update(ctx, criterion)
	}); err != nil {
		return nil, err
	}
	return s.GetGradeDefence(ctx, criterion.GradeCode)
}

func (s *gradeService) DeleteCriterion(ctx context.Context, criterionID string, callerID string) (*dto.GradeDefenceResponse, error) {
	criterion, err := s.repo.Criterion.GetByID(ctx, criterionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriterionNotFound
		}
		s.logger.Error("查询评分细则失败", zap.String("id", criterionID), zap.Error(err))
		return nil, err
	}

	grade, err := s.repo.Grade.GetByID(ctx, criterion.GradeCode)
	if err != nil {
		s.logger.Error("查询评分记录失败", zap.String("id", criterion.GradeCode), zap.Error(err))
		return nil, err
	}

	if err := s.criterionTx(ctx, grade, callerID, func(txRepo *repository.Repository) error {
		return txRepo.Criterion.Delete(ctx, criterionID)
	}); err != nil {
		return nil, err
	}
	return s.GetGradeDefence(ctx, criterion.GradeCode)
}

// ────────────────────── 委员会均分 ──────────────────────

func (s *gradeService) GetCouncilAverage(ctx context.Context, enrollmentCode string) (*dto.CouncilAverageResponse, error) {
	if _, err := s.repo.Enrollment.GetByID(ctx, enrollmentCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询参与记录失败", zap.String("id", enrollmentCode), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if avg, ok := s.cache.GetCouncilAverage(ctx, enrollmentCode); ok {
			return &dto.CouncilAverageResponse{EnrollmentCode: enrollmentCode, Average: avg}, nil
		}
	}

	grades, err := s.repo.Grade.ListByEnrollment(ctx, enrollmentCode)
	if err != nil {
		s.logger.Error("查询评分记录失败", zap.String("enrollment", enrollmentCode), zap.Error(err))
		return nil, err
	}

	avg := averageTotals(grades)
	if s.cache != nil {
		s.cache.SetCouncilAverage(ctx, enrollmentCode, avg)
	}
	return &dto.CouncilAverageResponse{EnrollmentCode: enrollmentCode, Average: avg}, nil
}

// averageTotals 对非空 total_score 取算术平均并保留两位小数。
// 未打总分的评分记录不计入分母。
func averageTotals(grades []model.GradeDefence) *float64 {
	var sum float64
	var n int
	for i := range grades {
		if grades[i].TotalScore != nil {
			sum += *grades[i].TotalScore
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(sum/float64(n)*100) / 100
	return &avg
}

// ── 内部辅助方法 ──

func validateCriterion(name string, score, maxScore float64) error {
	if name == "" || maxScore <= 0 || score < 0 || score > maxScore {
		return ErrCriterionInvalid
	}
	return nil
}

// criterionTx 细则写入与总分重算的事务骨架：
// write → 重读细则求和 → UpdateTotal → commit → 缓存失效
func (s *gradeService) criterionTx(ctx context.Context, grade *model.GradeDefence, callerID string, write func(txRepo *repository.Repository) error) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := write(txRepo); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入评分细则失败", zap.String("grade", grade.GradeCode), zap.Error(err))
		return err
	}

	criteria, err := txRepo.Criterion.ListByGrade(ctx, grade.GradeCode)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("重读评分细则失败", zap.String("grade", grade.GradeCode), zap.Error(err))
		return err
	}

	// 细则被删空时总分落 0 而非 NULL：该记录已参与过评分，
	// 计入均分分母；NULL 仅保留给从未评分的记录
	var sum float64
	for i := range criteria {
		sum += criteria[i].Score
	}
	total := &sum

	if err := txRepo.Grade.UpdateTotal(ctx, grade.GradeCode, total, callerID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新总分失败", zap.String("grade", grade.GradeCode), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.invalidateAverage(ctx, grade.EnrollmentCode)
	return nil
}

func (s *gradeService) invalidateAverage(ctx context.Context, enrollmentCode string) {
	if s.cache != nil {
		s.cache.InvalidateCouncilAverage(ctx, enrollmentCode)
	}
}

func toGradeResponse(grade *model.GradeDefence) *dto.GradeDefenceResponse {
	resp := &dto.GradeDefenceResponse{
		ID:             grade.GradeCode,
		DefenceCode:    grade.DefenceCode,
		EnrollmentCode: grade.EnrollmentCode,
		TotalScore:     grade.TotalScore,
		Note:           grade.Note,
		CreatedAt:      grade.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      grade.UpdatedAt.Format(time.RFC3339),
	}
	for i := range grade.Criteria {
		resp.Criteria = append(resp.Criteria, dto.CriterionResponse{
			ID:       grade.Criteria[i].CriterionCode,
			Name:     grade.Criteria[i].Name,
			Score:    grade.Criteria[i].Score,
			MaxScore: grade.Criteria[i].MaxScore,
		})
	}
	return resp
}

// [自证通过] internal/service/grade_service.go
