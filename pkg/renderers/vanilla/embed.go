package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/components/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName = "formflow.css"
	ScriptName     = "formflow.js"
)

// TemplatesFS exposes the embedded page and component templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the stylesheet and runtime script so callers can serve
// them over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
