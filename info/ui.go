package info

import (
	"embed"
	"html/template"
	"strings"
)

// UIType names a documentation UI.
type UIType string

const (
	UISwaggerUI UIType = "swaggerui"
	UIStoplight UIType = "stoplight"
	UIScalar    UIType = "scalar"
	UIRedoc     UIType = "redoc"
)

// ParseUIType maps a configuration value to a UIType. Matching ignores case
// and unknown names report false.
func ParseUIType(name string) (UIType, bool) {
	switch ui := UIType(strings.ToLower(strings.TrimSpace(name))); ui {
	case UISwaggerUI, UIStoplight, UIScalar, UIRedoc:
		return ui, true
	case "":
		return UISwaggerUI, true
	default:
		return "", false
	}
}

//go:embed assets/*.html
var assets embed.FS

var (
	templateSwaggerUI = mustTemplate(UISwaggerUI)
	templateStoplight = mustTemplate(UIStoplight)
	templateScalar    = mustTemplate(UIScalar)
	templateRedoc     = mustTemplate(UIRedoc)
)

func mustTemplate(ui UIType) *template.Template {
	return template.Must(template.ParseFS(assets, "assets/"+string(ui)+".html"))
}

func templateFor(ui UIType) *template.Template {
	switch ui {
	case UIStoplight:
		return templateStoplight
	case UIScalar:
		return templateScalar
	case UIRedoc:
		return templateRedoc
	default:
		return templateSwaggerUI
	}
}
