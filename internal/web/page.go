package web

import (
	"html/template"
	"net/http"
)

// The whole UI is this one page: upload form, optional status message and the
// fixed help text. Messages from the pipeline are shown verbatim.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>小分け作業用</title>
</head>
<body>
<h1>小分け作業用</h1>
<hr>
{{if .Message}}<p>{{.Message}}</p><hr>{{end}}
<form action="/process" method="post" enctype="multipart/form-data">
<p>処理対象のExcelファイル（.xlsx）をアップロードしてください</p>
<p><input type="file" name="file" accept=".xlsx"></p>
<p><label>シート名（省略時は最初のシート）: <input type="text" name="sheet"></label></p>
<p><button type="submit">処理実行</button></p>
</form>
<hr>
<h4>補足説明</h4>
<ul>
<li>Excelファイルをアップロードしたら、「処理実行」ボタンを押してください。</li>
<li>処理結果は、ファイルとしてダウンロードできます。</li>
<li>「充足率」は「納品数」に対する「昨日残数」の割合です。（昨日残数÷納品数×100）</li>
</ul>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, struct{ Message string }{Message: message})
}
