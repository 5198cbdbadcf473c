package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"thesis-hub/backend/internal/model"
	"thesis-hub/backend/internal/repository"
	pkgerrors "thesis-hub/backend/pkg/errors"
)

// 内存 mock 仓储，按真实实现模拟 CAS 与唯一约束的行为。

// ── Mock TopicRepository ──

type mockTopicRepo struct {
	topics map[string]*model.Topic
	seq    int
}

func newMockTopicRepo() *mockTopicRepo {
	return &mockTopicRepo{topics: make(map[string]*model.Topic)}
}

func (m *mockTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	if topic.TopicCode == "" {
		m.seq++
		topic.TopicCode = fmt.Sprintf("topic-%03d", m.seq)
	}
	m.topics[topic.TopicCode] = topic
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id string) (*model.Topic, error) {
	if t, ok := m.topics[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) GetWithCouncils(ctx context.Context, id string) (*model.Topic, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTopicRepo) List(_ context.Context, semesterCode string, status *model.TopicStatus) ([]model.Topic, error) {
	var result []model.Topic
	for _, t := range m.topics {
		if semesterCode != "" && t.SemesterCode != semesterCode {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTopicRepo) Update(_ context.Context, topic *model.Topic) error {
	m.topics[topic.TopicCode] = topic
	return nil
}

func (m *mockTopicRepo) UpdateStatus(_ context.Context, id string, from, to model.TopicStatus, reason *string, updatedBy string) error {
	t, ok := m.topics[id]
	if !ok || t.Status != from {
		// 条件更新零行命中
		return pkgerrors.ErrOptimisticLock
	}
	t.Status = to
	if reason != nil {
		t.RejectReason = reason
	}
	t.UpdatedBy = &updatedBy
	return nil
}

// ── Mock TopicCouncilRepository ──

type mockTopicCouncilRepo struct {
	tcs   map[string]*model.TopicCouncil
	order []string
	seq   int
}

func newMockTopicCouncilRepo() *mockTopicCouncilRepo {
	return &mockTopicCouncilRepo{tcs: make(map[string]*model.TopicCouncil)}
}

func (m *mockTopicCouncilRepo) Create(_ context.Context, tc *model.TopicCouncil) error {
	for _, id := range m.order {
		existing := m.tcs[id]
		if existing.TopicCode == tc.TopicCode && existing.Stage == tc.Stage {
			return gorm.ErrDuplicatedKey
		}
	}
	if tc.TopicCouncilCode == "" {
		m.seq++
		tc.TopicCouncilCode = fmt.Sprintf("tc-%03d", m.seq)
	}
	m.tcs[tc.TopicCouncilCode] = tc
	m.order = append(m.order, tc.TopicCouncilCode)
	return nil
}

func (m *mockTopicCouncilRepo) GetByID(_ context.Context, id string) (*model.TopicCouncil, error) {
	if tc, ok := m.tcs[id]; ok {
		cp := *tc
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicCouncilRepo) ListByTopic(_ context.Context, topicCode string) ([]model.TopicCouncil, error) {
	var result []model.TopicCouncil
	for _, id := range m.order {
		if m.tcs[id].TopicCode == topicCode {
			result = append(result, *m.tcs[id])
		}
	}
	return result, nil
}

func (m *mockTopicCouncilRepo) ListByCouncil(_ context.Context, councilCode string) ([]model.TopicCouncil, error) {
	var result []model.TopicCouncil
	for _, id := range m.order {
		tc := m.tcs[id]
		if tc.CouncilCode != nil && *tc.CouncilCode == councilCode {
			result = append(result, *tc)
		}
	}
	return result, nil
}

func (m *mockTopicCouncilRepo) Assign(_ context.Context, id, councilCode, updatedBy string) error {
	tc, ok := m.tcs[id]
	if !ok || tc.CouncilCode != nil {
		return pkgerrors.ErrOptimisticLock
	}
	tc.CouncilCode = &councilCode
	tc.UpdatedBy = &updatedBy
	return nil
}

func (m *mockTopicCouncilRepo) Release(_ context.Context, id, councilCode, updatedBy string) error {
	tc, ok := m.tcs[id]
	if !ok || tc.CouncilCode == nil || *tc.CouncilCode != councilCode {
		return pkgerrors.ErrOptimisticLock
	}
	tc.CouncilCode = nil
	tc.UpdatedBy = &updatedBy
	return nil
}

// ── Mock CouncilRepository ──

type mockCouncilRepo struct {
	councils map[string]*model.Council
	order    []string
	seq      int
	// onForUpdate 在行锁读取返回前调用，模拟拿到行锁时其他事务已提交的状态
	onForUpdate func(id string)
}

func newMockCouncilRepo() *mockCouncilRepo {
	return &mockCouncilRepo{councils: make(map[string]*model.Council)}
}

func (m *mockCouncilRepo) Create(_ context.Context, council *model.Council) error {
	if council.CouncilCode == "" {
		m.seq++
		council.CouncilCode = fmt.Sprintf("council-%03d", m.seq)
	}
	m.councils[council.CouncilCode] = council
	m.order = append(m.order, council.CouncilCode)
	return nil
}

func (m *mockCouncilRepo) GetByID(_ context.Context, id string) (*model.Council, error) {
	if c, ok := m.councils[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCouncilRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Council, error) {
	if m.onForUpdate != nil {
		m.onForUpdate(id)
	}
	return m.GetByID(ctx, id)
}

func (m *mockCouncilRepo) List(_ context.Context, semesterCode string) ([]model.Council, error) {
	var result []model.Council
	for _, id := range m.order {
		c := m.councils[id]
		if semesterCode != "" && c.SemesterCode != semesterCode {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCouncilRepo) ListScheduled(_ context.Context, semesterCode string) ([]model.Council, error) {
	var result []model.Council
	for _, id := range m.order {
		c := m.councils[id]
		if c.TimeStart == nil {
			continue
		}
		if semesterCode != "" && c.SemesterCode != semesterCode {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCouncilRepo) GetForReport(_ context.Context, ids []string) ([]model.Council, error) {
	want := make(map[string]bool)
	for _, id := range ids {
		want[id] = true
	}
	var result []model.Council
	for _, id := range m.order {
		if len(ids) > 0 && !want[id] {
			continue
		}
		result = append(result, *m.councils[id])
	}
	return result, nil
}

func (m *mockCouncilRepo) Update(_ context.Context, council *model.Council) error {
	existing, ok := m.councils[council.CouncilCode]
	if !ok || existing.Version != council.Version {
		return pkgerrors.ErrOptimisticLock
	}
	council.Version++
	m.councils[council.CouncilCode] = council
	return nil
}

// ── Mock DefenceRepository ──

type mockDefenceRepo struct {
	defences map[string]*model.Defence
	order    []string
	seq      int
}

func newMockDefenceRepo() *mockDefenceRepo {
	return &mockDefenceRepo{defences: make(map[string]*model.Defence)}
}

func (m *mockDefenceRepo) Create(_ context.Context, defence *model.Defence) error {
	for _, id := range m.order {
		existing := m.defences[id]
		if existing.CouncilCode == defence.CouncilCode && existing.TeacherCode == defence.TeacherCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if defence.DefenceCode == "" {
		m.seq++
		defence.DefenceCode = fmt.Sprintf("defence-%03d", m.seq)
	}
	m.defences[defence.DefenceCode] = defence
	m.order = append(m.order, defence.DefenceCode)
	return nil
}

func (m *mockDefenceRepo) GetByID(_ context.Context, id string) (*model.Defence, error) {
	if d, ok := m.defences[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDefenceRepo) ListByCouncil(_ context.Context, councilCode string) ([]model.Defence, error) {
	var result []model.Defence
	for _, id := range m.order {
		if m.defences[id].CouncilCode == councilCode {
			result = append(result, *m.defences[id])
		}
	}
	return result, nil
}

func (m *mockDefenceRepo) Delete(_ context.Context, id string) error {
	delete(m.defences, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment)}
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock GradeRepository ──

type mockGradeRepo struct {
	grades    map[string]*model.GradeDefence
	order     []string
	seq       int
	criterion *mockCriterionRepo // GetByID 时按真实实现预加载细则
}

func newMockGradeRepo(criterion *mockCriterionRepo) *mockGradeRepo {
	return &mockGradeRepo{grades: make(map[string]*model.GradeDefence), criterion: criterion}
}

func (m *mockGradeRepo) Create(_ context.Context, grade *model.GradeDefence) error {
	for _, id := range m.order {
		existing := m.grades[id]
		if existing.DefenceCode == grade.DefenceCode && existing.EnrollmentCode == grade.EnrollmentCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if grade.GradeCode == "" {
		m.seq++
		grade.GradeCode = fmt.Sprintf("grade-%03d", m.seq)
	}
	m.grades[grade.GradeCode] = grade
	m.order = append(m.order, grade.GradeCode)
	return nil
}

func (m *mockGradeRepo) GetByID(ctx context.Context, id string) (*model.GradeDefence, error) {
	g, ok := m.grades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	if m.criterion != nil {
		cp.Criteria, _ = m.criterion.ListByGrade(ctx, id)
	}
	return &cp, nil
}

func (m *mockGradeRepo) ListByEnrollment(_ context.Context, enrollmentCode string) ([]model.GradeDefence, error) {
	var result []model.GradeDefence
	for _, id := range m.order {
		if m.grades[id].EnrollmentCode == enrollmentCode {
			result = append(result, *m.grades[id])
		}
	}
	return result, nil
}

func (m *mockGradeRepo) Update(_ context.Context, grade *model.GradeDefence) error {
	g, ok := m.grades[grade.GradeCode]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.Note = grade.Note
	g.UpdatedBy = grade.UpdatedBy
	return nil
}

func (m *mockGradeRepo) UpdateTotal(_ context.Context, id string, total *float64, updatedBy string) error {
	g, ok := m.grades[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.TotalScore = total
	g.UpdatedBy = &updatedBy
	return nil
}

// ── Mock CriterionRepository ──

type mockCriterionRepo struct {
	criteria map[string]*model.Criterion
	order    []string
	seq      int
}

func newMockCriterionRepo() *mockCriterionRepo {
	return &mockCriterionRepo{criteria: make(map[string]*model.Criterion)}
}

func (m *mockCriterionRepo) Create(_ context.Context, criterion *model.Criterion) error {
	if criterion.CriterionCode == "" {
		m.seq++
		criterion.CriterionCode = fmt.Sprintf("crit-%03d", m.seq)
	}
	criterion.CreatedAt = time.Now()
	m.criteria[criterion.CriterionCode] = criterion
	m.order = append(m.order, criterion.CriterionCode)
	return nil
}

func (m *mockCriterionRepo) GetByID(_ context.Context, id string) (*model.Criterion, error) {
	if c, ok := m.criteria[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCriterionRepo) ListByGrade(_ context.Context, gradeCode string) ([]model.Criterion, error) {
	var result []model.Criterion
	for _, id := range m.order {
		if m.criteria[id].GradeCode == gradeCode {
			result = append(result, *m.criteria[id])
		}
	}
	return result, nil
}

func (m *mockCriterionRepo) Update(_ context.Context, criterion *model.Criterion) error {
	c, ok := m.criteria[criterion.CriterionCode]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Name = criterion.Name
	c.Score = criterion.Score
	c.MaxScore = criterion.MaxScore
	return nil
}

func (m *mockCriterionRepo) Delete(_ context.Context, id string) error {
	delete(m.criteria, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// ── Mock RosterRepository ──

type mockRosterRepo struct {
	students map[string]*model.Student
	teachers map[string]*model.Teacher
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{
		students: make(map[string]*model.Student),
		teachers: make(map[string]*model.Teacher),
	}
}

func (m *mockRosterRepo) GetStudent(_ context.Context, code string) (*model.Student, error) {
	if s, ok := m.students[code]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRosterRepo) GetTeacher(_ context.Context, code string) (*model.Teacher, error) {
	if t, ok := m.teachers[code]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── 组装辅助 ──

type testRepos struct {
	topic        *mockTopicRepo
	topicCouncil *mockTopicCouncilRepo
	council      *mockCouncilRepo
	defence      *mockDefenceRepo
	enrollment   *mockEnrollmentRepo
	grade        *mockGradeRepo
	criterion    *mockCriterionRepo
	roster       *mockRosterRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	criterion := newMockCriterionRepo()
	mocks := &testRepos{
		topic:        newMockTopicRepo(),
		topicCouncil: newMockTopicCouncilRepo(),
		council:      newMockCouncilRepo(),
		defence:      newMockDefenceRepo(),
		enrollment:   newMockEnrollmentRepo(),
		grade:        newMockGradeRepo(criterion),
		criterion:    criterion,
		roster:       newMockRosterRepo(),
	}
	repo := &repository.Repository{
		Topic:        mocks.topic,
		TopicCouncil: mocks.topicCouncil,
		Council:      mocks.council,
		Defence:      mocks.defence,
		Enrollment:   mocks.enrollment,
		Grade:        mocks.grade,
		Criterion:    mocks.criterion,
		Roster:       mocks.roster,
	}
	return repo, mocks
}

