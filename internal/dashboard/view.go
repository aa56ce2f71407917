package dashboard

import (
	"html/template"
	"strconv"
)

var funcs = template.FuncMap{
	"css":  func(s string) template.CSS { return template.CSS(s) },
	"num0": func(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) },
}
