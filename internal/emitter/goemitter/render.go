package goemitter

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"text/template"
)

//go:embed templates/types.go.tmpl templates/main.go.tmpl
var templateFS embed.FS

var portRe = regexp.MustCompile(`:(\d+)(?:/|$)`)

// templateData is the render context handed to both templates. Rendering is a
// pure function of this context; all declaration text is prebuilt.
type templateData struct {
	Title         string
	SpecVersion   string
	PackageName   string
	TypeDecls     []string
	ErrorDecls    []string
	Services      []serviceData
	DefaultPort   string
	IsMainPackage bool
}

func renderTypes(data *templateData) ([]byte, error) {
	src, err := render("templates/types.go.tmpl", data)
	if err != nil {
		return nil, err
	}
	return gofmt("types.go", src), nil
}

func renderMain(data *templateData) ([]byte, error) {
	src, err := render("templates/main.go.tmpl", data)
	if err != nil {
		return nil, err
	}
	return gofmt("main.go", src), nil
}

func render(name string, data *templateData) ([]byte, error) {
	text, err := templateFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	tpl, err := template.New(name).Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
