// Package pipeline implements the single-shot transform that turns an
// uploaded inventory workbook into the styled repacking priority list.
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"kowake/internal"
	"kowake/internal/util"
)

const (
	// Product names carrying this marker are repacking candidates.
	repackMarker = "◇"
	// Names ending with this suffix belong to the 東一 channel and are
	// excluded from the list (their shortage is still reflected upstream).
	excludedSuffix = "東一"
)

// Processor runs the transform. Now is injectable so tests can pin the date
// used for the report title and filename.
type Processor struct {
	Now func() time.Time
}

func New() *Processor {
	return &Processor{Now: time.Now}
}

// Process turns the uploaded workbook bytes into a Result. sheet selects the
// worksheet to read; empty means the first sheet. All failures, including
// panics inside the pipeline, come back as a Result with OK=false — Process
// never propagates an error past this boundary.
func (p *Processor) Process(input []byte, sheet string) (res internal.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(fmt.Sprintf("処理中に予期せぬエラーが発生しました: %v", r))
		}
	}()

	t, err := loadTable(input, sheet)
	if err != nil {
		return failure(err.Error())
	}

	if missing := t.missingColumns(); len(missing) > 0 {
		return failure(fmt.Sprintf(
			"Excelファイルに必要な列が見つかりません: %s。\nExcelファイルのシートの2行目のヘッダー名を確認してください。\n読み込まれたExcelヘッダー: %v",
			strings.Join(missing, ", "), t.headers))
	}

	matched := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		if strings.Contains(t.cell(row, colProductName), repackMarker) {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		return info("対象商品（商品名に「◇」を含む）が見つかりませんでした。")
	}

	kept := make([][]string, 0, len(matched))
	for _, row := range matched {
		if !strings.HasSuffix(t.cell(row, colProductName), excludedSuffix) {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return info("対象商品（商品名に「◇」を含み、かつ末尾が「東一」でない）が見つかりませんでした。")
	}

	rows := make([]internal.ReportRow, 0, len(kept))
	for _, row := range kept {
		r := internal.ReportRow{
			Code:         t.cell(row, colProductCode),
			Name:         t.cell(row, colProductName),
			PrevDayStock: util.CoerceNumeric(t.cell(row, colPrevStock)),
			TodayMade:    util.CoerceNumeric(t.cell(row, colTodayMade)),
			DeliveryQty:  util.CoerceNumeric(t.cell(row, colDelivery)),
			ShortageQty:  util.CoerceNumeric(t.cell(row, colShortage)),
		}
		if r.TodayMade == 0 {
			continue
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return info("対象商品（商品名に「◇」を含み、末尾が「東一」でなく、かつ「今日入荷（作成）」が0でない）は見つかりませんでした。")
	}

	for i := range rows {
		rows[i].Fulfillment = fulfillment(rows[i])
		rows[i].DeliveryShortageRatio = deliveryShortageRatio(rows[i])
	}

	// Priority order: lowest fulfillment first, then smallest shortage,
	// smallest previous-day stock, largest delivery/shortage ratio. Stable so
	// fully tied rows keep their input order.
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Fulfillment != b.Fulfillment {
			return a.Fulfillment < b.Fulfillment
		}
		if a.ShortageQty != b.ShortageQty {
			return a.ShortageQty < b.ShortageQty
		}
		if a.PrevDayStock != b.PrevDayStock {
			return a.PrevDayStock < b.PrevDayStock
		}
		return a.DeliveryShortageRatio > b.DeliveryShortageRatio
	})

	now := p.now()
	artifact, err := renderReport(rows, now)
	if err != nil {
		return failure(fmt.Sprintf("処理中に予期せぬエラーが発生しました: %v", err))
	}

	filename := now.Format("0102") + "_小分け作業の判断指標.xlsx"
	return internal.Result{
		OK:       true,
		Message:  fmt.Sprintf("処理が完了しました。「%s」を確認してください。", filename),
		Filename: filename,
		Artifact: artifact,
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func fulfillment(r internal.ReportRow) float64 {
	if r.DeliveryQty == 0 {
		return 0
	}
	return r.PrevDayStock / r.DeliveryQty
}

func deliveryShortageRatio(r internal.ReportRow) float64 {
	if r.ShortageQty <= 0 {
		return -1
	}
	return r.DeliveryQty / r.ShortageQty
}

func failure(message string) internal.Result {
	return internal.Result{OK: false, Message: message}
}

func info(message string) internal.Result {
	return internal.Result{OK: true, Message: message}
}
