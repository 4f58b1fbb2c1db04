package pipeline

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

var inputHeaders = []string{
	"商品コード", "商品名", "昨日残", "今日入荷（作成）", "納品数",
	"集荷便から降ろす数/小分けしないと足りない数",
}

// mkInput builds a workbook shaped like the source file: banner on row 1,
// header on row 2, data from row 3.
func mkInput(headers []string, data [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "在庫・納品一覧")
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 2)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range data {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+3)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 5, 10, 30, 0, 0, time.Local)
}

func testProcessor() *Processor {
	return &Processor{Now: fixedNow}
}

// artifactRows reads back the data rows (sheet rows 3..) of a rendered report.
func artifactRows(t *testing.T, artifact []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(artifact))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) < 2 {
		t.Fatalf("artifact has %d rows", len(rows))
	}
	out := [][]string{}
	for _, row := range rows[2:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			break
		}
		out = append(out, row)
	}
	return out
}

func TestProcessMissingColumns(t *testing.T) {
	for _, missing := range inputHeaders {
		t.Run(missing, func(t *testing.T) {
			headers := []string{}
			for _, h := range inputHeaders {
				if h != missing {
					headers = append(headers, h)
				}
			}
			res := testProcessor().Process(mkInput(headers, nil), "")
			if res.OK {
				t.Fatal("expected failure")
			}
			if !strings.Contains(res.Message, missing) {
				t.Fatalf("message does not name %q: %s", missing, res.Message)
			}
			if !strings.Contains(res.Message, "読み込まれたExcelヘッダー") {
				t.Fatalf("message lacks observed headers: %s", res.Message)
			}
			if res.Artifact != nil {
				t.Fatal("failure must not carry an artifact")
			}
		})
	}
}

func TestProcessHeaderTrimming(t *testing.T) {
	headers := make([]string, len(inputHeaders))
	for i, h := range inputHeaders {
		headers[i] = "  " + h + "　"
	}
	blob := mkInput(headers, [][]any{{"A-1", "◇ガム", 2, 5, 10, 3}})
	res := testProcessor().Process(blob, "")
	if !res.OK || res.Artifact == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestProcessFilters(t *testing.T) {
	data := [][]any{
		{"A-1", "◇東一", 1, 5, 10, 2},   // suffix excluded
		{"A-2", "◇東京一", 1, 5, 10, 2},  // kept
		{"A-3", "ただの商品", 1, 5, 10, 2}, // no marker
		{"A-4", "◇ガム", 1, 0, 10, 2},   // zero today
		{"A-5", "◇グミ", 1, "入荷未定", 10, 2}, // garbage today coerces to 0
		{"A-6", "◇ラムネ", 1, 5, 10, 2},  // kept
	}
	res := testProcessor().Process(mkInput(inputHeaders, data), "")
	if !res.OK || res.Artifact == nil {
		t.Fatalf("unexpected result: %+v", res)
	}

	rows := artifactRows(t, res.Artifact)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	codes := map[string]bool{}
	for _, row := range rows {
		codes[row[0]] = true
	}
	if !codes["A-2"] || !codes["A-6"] {
		t.Fatalf("unexpected codes: %v", codes)
	}
}

func TestProcessEmptyOutcomes(t *testing.T) {
	cases := []struct {
		name string
		data [][]any
		want string
	}{
		{
			name: "no marker",
			data: [][]any{{"A-1", "ただの商品", 1, 5, 10, 2}},
			want: "対象商品（商品名に「◇」を含む）が見つかりませんでした。",
		},
		{
			name: "all excluded suffix",
			data: [][]any{{"A-1", "◇東一", 1, 5, 10, 2}},
			want: "対象商品（商品名に「◇」を含み、かつ末尾が「東一」でない）が見つかりませんでした。",
		},
		{
			name: "all zero today",
			data: [][]any{
				{"A-1", "◇ガム", 1, 0, 10, 2},
				{"A-2", "◇グミ", 1, "未定", 10, 2},
			},
			want: "対象商品（商品名に「◇」を含み、末尾が「東一」でなく、かつ「今日入荷（作成）」が0でない）は見つかりませんでした。",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := testProcessor().Process(mkInput(inputHeaders, tc.data), "")
			if !res.OK {
				t.Fatalf("empty result must not be a failure: %+v", res)
			}
			if res.Artifact != nil || res.Filename != "" {
				t.Fatalf("empty result must not carry an artifact: %+v", res)
			}
			if res.Message != tc.want {
				t.Fatalf("message = %q, want %q", res.Message, tc.want)
			}
		})
	}
}

func TestProcessSortOrder(t *testing.T) {
	// Keys per row: fulfillment, shortage, prev-day stock and the
	// delivery/shortage tie-break, each exercised in turn. P7/P8 are fully
	// tied and must keep input order.
	data := [][]any{
		{"P1", "◇商品1", 4, 1, 2, 1}, // fulfillment 2.0
		{"P2", "◇商品2", 1, 1, 2, 5}, // fulfillment 0.5, shortage 5
		{"P3", "◇商品3", 1, 1, 2, 3}, // fulfillment 0.5, shortage 3, prev 1
		{"P4", "◇商品4", 2, 1, 4, 3}, // fulfillment 0.5, shortage 3, prev 2
		{"P5", "◇商品5", 0, 1, 6, 2}, // fulfillment 0, ratio 3
		{"P6", "◇商品6", 0, 1, 4, 2}, // fulfillment 0, ratio 2
		{"P7", "◇商品7", 0, 1, 5, 0}, // fulfillment 0, shortage 0, ratio -1
		{"P8", "◇商品8", 0, 1, 5, 0}, // identical keys to P7
	}
	res := testProcessor().Process(mkInput(inputHeaders, data), "")
	if !res.OK || res.Artifact == nil {
		t.Fatalf("unexpected result: %+v", res)
	}

	rows := artifactRows(t, res.Artifact)
	got := make([]string, 0, len(rows))
	for _, row := range rows {
		got = append(got, row[0])
	}
	want := []string{"P7", "P8", "P5", "P6", "P3", "P4", "P2", "P1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestProcessZeroDeliveryFulfillment(t *testing.T) {
	data := [][]any{{"A-1", "◇ガム", 3, 5, 0, 2}}
	res := testProcessor().Process(mkInput(inputHeaders, data), "")
	if !res.OK || res.Artifact == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	rows := artifactRows(t, res.Artifact)
	if got := parsePercent(t, rows[0][6]); got != 0 {
		t.Fatalf("fulfillment = %v, want 0", got)
	}
}

func TestProcessRoundTripPercent(t *testing.T) {
	data := [][]any{
		{"A-1", "◇ガム", 1, 1, 2, 3},  // 50.0%
		{"A-2", "◇グミ", 4, 1, 2, 3},  // 200.0%
		{"A-3", "◇ラムネ", 0, 1, 2, 3}, // 0.0%
	}
	res := testProcessor().Process(mkInput(inputHeaders, data), "")
	if !res.OK || res.Artifact == nil {
		t.Fatalf("unexpected result: %+v", res)
	}

	want := map[string]float64{"A-1": 0.5, "A-2": 2.0, "A-3": 0}
	rows := artifactRows(t, res.Artifact)
	if len(rows) != len(want) {
		t.Fatalf("got %d rows", len(rows))
	}
	for _, row := range rows {
		expect := want[row[0]]
		if got := parsePercent(t, row[6]); got < expect-0.0005 || got > expect+0.0005 {
			t.Fatalf("%s fulfillment = %v, want %v", row[0], got, expect)
		}
	}
}

func TestProcessFractionalCells(t *testing.T) {
	// Fractional 昨日残/納品数 values must flow through as decimals, not be
	// misread as grouped integers.
	data := [][]any{{"A-1", "◇ガム", 0.375, 1, 1.5, 3}}
	res := testProcessor().Process(mkInput(inputHeaders, data), "")
	if !res.OK || res.Artifact == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	rows := artifactRows(t, res.Artifact)
	if got := parsePercent(t, rows[0][6]); got < 0.2495 || got > 0.2505 {
		t.Fatalf("fulfillment = %v, want 0.25", got)
	}
}

func TestProcessFilenameAndMessage(t *testing.T) {
	data := [][]any{{"A-1", "◇ガム", 2, 5, 10, 3}}
	res := testProcessor().Process(mkInput(inputHeaders, data), "")
	if !res.OK || res.Artifact == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Filename != "0305_小分け作業の判断指標.xlsx" {
		t.Fatalf("filename = %q", res.Filename)
	}
	if res.Message != "処理が完了しました。「0305_小分け作業の判断指標.xlsx」を確認してください。" {
		t.Fatalf("message = %q", res.Message)
	}
}

func parsePercent(t *testing.T, display string) float64 {
	t.Helper()
	s := strings.TrimSuffix(strings.TrimSpace(display), "%")
	if s == display {
		t.Fatalf("not a percent value: %q", display)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatal(err)
	}
	return v / 100
}
