package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Input header names as they appear on the second row of the source sheet.
const (
	colProductCode = "商品コード"
	colProductName = "商品名"
	colPrevStock   = "昨日残"
	colTodayMade   = "今日入荷（作成）"
	colDelivery    = "納品数"
	colShortage    = "集荷便から降ろす数/小分けしないと足りない数"
)

// requiredColumns pairs each required header with the logical position name
// used in schema failure messages.
var requiredColumns = []struct {
	display string
	header  string
}{
	{"商品コード(A列)", colProductCode},
	{"商品名(B列)", colProductName},
	{"昨日残(C列)", colPrevStock},
	{"今日入荷作成(D列)", colTodayMade},
	{"納品数(E列)", colDelivery},
	{"小分け不足数(K列)", colShortage},
}

var errEmptyWorkbook = errors.New("Excelファイルが空か、データが読み取れませんでした。")

// table is the selected sheet with the banner row dropped and header names
// resolved to column indexes once at load time. Row 1 of the sheet is a
// banner, row 2 the header; data starts on row 3.
type table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

func loadTable(input []byte, sheet string) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("Excelファイルの読み込み中にエラーが発生しました。ファイルが破損しているか、形式が正しくない可能性があります。エラー: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("シート「%s」の読み込み中にエラーが発生しました。エラー: %v", sheet, err)
	}
	if len(rows) < 2 {
		return nil, errEmptyWorkbook
	}

	headers := make([]string, len(rows[1]))
	index := make(map[string]int, len(rows[1]))
	for i, h := range rows[1] {
		h = strings.TrimSpace(h)
		headers[i] = h
		if _, exists := index[h]; !exists && h != "" {
			index[h] = i
		}
	}

	return &table{headers: headers, index: index, rows: rows[2:]}, nil
}

// cell returns the value of the named column in row, or "" when the row is
// ragged and does not reach that column. Values are returned as-is: only
// headers are trimmed, cell content is not.
func (t *table) cell(row []string, header string) string {
	i, ok := t.index[header]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// missingColumns lists required headers absent after trimming, formatted for
// the schema failure message.
func (t *table) missingColumns() []string {
	var missing []string
	for _, rc := range requiredColumns {
		if _, ok := t.index[rc.header]; !ok {
			missing = append(missing, fmt.Sprintf("%s (想定ヘッダー名: '%s')", rc.display, rc.header))
		}
	}
	return missing
}
