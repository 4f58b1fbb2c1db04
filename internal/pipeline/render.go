package pipeline

import (
	"time"

	"github.com/xuri/excelize/v2"

	"kowake/internal"
)

const (
	reportSheet = "作業優先リスト"
	rowHeight   = 18.0
	titleCell   = "B1"
	headerRow   = 2
)

// columnSpec describes one output column: header text, fixed width and the
// emphasis applied to its cells.
type columnSpec struct {
	header  string
	width   float64
	bold    bool // header and data cells bold (本日作成)
	red     bool // data cells bold red (不足数)
	percent bool // data cells formatted 0.0% (充足率)
	value   func(internal.ReportRow) any
}

var reportColumns = []columnSpec{
	{header: "商品コード", width: 9, value: func(r internal.ReportRow) any { return r.Code }},
	{header: "商品名", width: 37, value: func(r internal.ReportRow) any { return r.Name }},
	{header: "昨日残", width: 7.5, value: func(r internal.ReportRow) any { return r.PrevDayStock }},
	{header: "本日作成", width: 9, bold: true, value: func(r internal.ReportRow) any { return r.TodayMade }},
	{header: "納品数", width: 7.5, value: func(r internal.ReportRow) any { return r.DeliveryQty }},
	{header: "不足数", width: 7.5, red: true, value: func(r internal.ReportRow) any { return r.ShortageQty }},
	{header: "充足率", width: 7.5, percent: true, value: func(r internal.ReportRow) any { return r.Fulfillment }},
}

var footerNotes = []string{
	"※充足率＝「納品数」に対する「昨日残数」の割合（昨日残数÷納品数）",
	"※「東一」用の商品名の記載はありませんが、該当商品の不足数には反映されています。",
}

// reportStyles holds the style IDs registered once per rendered workbook.
type reportStyles struct {
	title    int
	head     int
	headBold int
	data     int
	dataBold int
	dataRed  int
	dataPct  int
	footer   int
}

func newReportStyles(f *excelize.File) (reportStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	vcenter := &excelize.Alignment{Vertical: "center"}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	percentFmt := "0.0%"

	var s reportStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: vcenter,
	}); err != nil {
		return s, err
	}
	if s.head, err = f.NewStyle(&excelize.Style{Border: border, Alignment: center}); err != nil {
		return s, err
	}
	if s.headBold, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: center,
		Font:      &excelize.Font{Bold: true},
	}); err != nil {
		return s, err
	}
	if s.data, err = f.NewStyle(&excelize.Style{Border: border, Alignment: vcenter}); err != nil {
		return s, err
	}
	if s.dataBold, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: vcenter,
		Font:      &excelize.Font{Bold: true},
	}); err != nil {
		return s, err
	}
	if s.dataRed, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: vcenter,
		Font:      &excelize.Font{Bold: true, Color: "FF0000"},
	}); err != nil {
		return s, err
	}
	if s.dataPct, err = f.NewStyle(&excelize.Style{
		Border:       border,
		Alignment:    vcenter,
		CustomNumFmt: &percentFmt,
	}); err != nil {
		return s, err
	}
	if s.footer, err = f.NewStyle(&excelize.Style{Alignment: vcenter}); err != nil {
		return s, err
	}

	return s, nil
}

func (s reportStyles) forHeader(col columnSpec) int {
	if col.bold {
		return s.headBold
	}
	return s.head
}

func (s reportStyles) forData(col columnSpec) int {
	switch {
	case col.red:
		return s.dataRed
	case col.percent:
		return s.dataPct
	case col.bold:
		return s.dataBold
	default:
		return s.data
	}
}

// renderReport writes the sorted rows into a single-sheet styled workbook and
// returns its serialized bytes.
func renderReport(rows []internal.ReportRow, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return nil, err
	}

	styles, err := newReportStyles(f)
	if err != nil {
		return nil, err
	}

	for i, col := range reportColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(reportSheet, name, name, col.width); err != nil {
			return nil, err
		}
	}

	title := now.Format("01月02日") + " 小分け作成メモ"
	if err := f.SetCellValue(reportSheet, titleCell, title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(reportSheet, titleCell, titleCell, styles.title); err != nil {
		return nil, err
	}

	for i, col := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, col.header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(reportSheet, cell, cell, styles.forHeader(col)); err != nil {
			return nil, err
		}
	}

	for r, row := range rows {
		for c, col := range reportColumns {
			cell, err := excelize.CoordinatesToCellName(c+1, headerRow+1+r)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheet, cell, col.value(row)); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(reportSheet, cell, cell, styles.forData(col)); err != nil {
				return nil, err
			}
		}
	}

	lastDataRow := headerRow + len(rows)
	for r := 1; r <= lastDataRow; r++ {
		if err := f.SetRowHeight(reportSheet, r, rowHeight); err != nil {
			return nil, err
		}
	}

	// Footer notes go in column A, one blank row below the data.
	footerRow := lastDataRow + 2
	for i, note := range footerNotes {
		cell, err := excelize.CoordinatesToCellName(1, footerRow+i)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, note); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(reportSheet, cell, cell, styles.footer); err != nil {
			return nil, err
		}
		if err := f.SetRowHeight(reportSheet, footerRow+i, rowHeight); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
