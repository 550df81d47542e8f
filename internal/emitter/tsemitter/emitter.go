// Package tsemitter renders a TypeScript JSON-RPC 2.0 client from a resolved
// OpenRPC document: type declarations, error classes, and one client method
// per RPC method.
package tsemitter

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openrpckit/openrpcgen/internal/errcat"
	"github.com/openrpckit/openrpcgen/internal/organize"
	"github.com/openrpckit/openrpcgen/internal/spec"
	"github.com/openrpckit/openrpcgen/internal/typereg"
)

//go:embed templates/client.ts.tmpl
var templateFS embed.FS

// Options controls how the TypeScript emitter renders the client file.
type Options struct {
	OutPath   string // required; path of the client file
	ClassName string // generated client class name; defaults to "RPCClient"
	DryRun    bool
	Verbose   bool
}

// Result reports what was (or would be) written.
type Result struct {
	ClientPath string
	Size       int
}

// Emit renders the client file for the given resolved methods. The file is
// regenerated unconditionally on every run.
func Emit(ctx context.Context, doc *spec.Document, methods []spec.Method, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("tsemitter: nil document")
	}
	if strings.TrimSpace(opts.OutPath) == "" {
		return nil, fmt.Errorf("tsemitter: OutPath is required")
	}
	className := strings.TrimSpace(opts.ClassName)
	if className == "" {
		className = "RPCClient"
	}

	reg := typereg.New()
	conv := NewConverter(doc.Components, reg)

	services := buildServices(conv, organize.Group(methods))
	errors := errcat.Build(methods, errcat.WithFallbackPrefix("Error"))

	data := &templateData{
		Title:            doc.Info.Title,
		SpecVersion:      doc.Info.Version,
		Description:      doc.Info.Description,
		ClassName:        className,
		DefaultServerURL: defaultServerURL(doc.Servers),
		TypeDecls:        reg.Decls(),
		Errors:           errors,
		Services:         services,
	}

	src, err := renderClient(data)
	if err != nil {
		return nil, err
	}

	res := &Result{ClientPath: opts.OutPath, Size: len(src)}
	if opts.DryRun {
		return res, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.OutPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	if err := writeFileAtomic(opts.OutPath, src); err != nil {
		return nil, err
	}
	log.Debug().Str("path", opts.OutPath).Msg("generated client file")
	return res, nil
}

type templateData struct {
	Title            string
	SpecVersion      string
	Description      string
	ClassName        string
	DefaultServerURL string
	TypeDecls        []string
	Errors           []errcat.Entry
	Services         []serviceData
}

type serviceData struct {
	Name      string
	Namespace string
	Methods   []methodData
}

type methodData struct {
	RPCName        string
	TSName         string
	Summary        string
	ParamsType     string // empty when the method takes no parameters
	ResultType     string
	IsNotification bool
	IsPositional   bool
}

// buildServices derives params and result types per method, grouped by
// namespace in the organizer's deterministic order.
func buildServices(conv *Converter, groups []organize.Service) []serviceData {
	services := make([]serviceData, 0, len(groups))
	for _, g := range groups {
		sd := serviceData{Name: g.Name, Namespace: g.Namespace}
		for _, m := range g.Methods {
			sd.Methods = append(sd.Methods, buildMethod(conv, m))
		}
		services = append(services, sd)
	}
	return services
}

func buildMethod(conv *Converter, m organize.Method) methodData {
	safeName := strings.ReplaceAll(m.Name, ".", "_")
	md := methodData{
		RPCName:        m.Name,
		TSName:         safeName,
		Summary:        m.Summary,
		IsNotification: m.IsNotification(),
		IsPositional:   m.Structure() == spec.ByPosition,
	}

	if len(m.Params) > 0 {
		if md.IsPositional {
			md.ParamsType = tupleType(conv, m.Params)
		} else {
			name := capitalizeFirst(safeName) + "Params"
			md.ParamsType = conv.Convert(paramsSchema(m.Params), name)
		}
	}

	md.ResultType = "void"
	if !md.IsNotification {
		md.ResultType = opaque
		if m.Result != nil && m.Result.Schema != nil {
			name := capitalizeFirst(safeName) + "Result"
			md.ResultType = conv.Convert(m.Result.Schema, name)
		}
	}
	return md
}

// tupleType renders a fixed-order tuple for by-position parameters. Optional
// slots carry an explicit "or absent" union.
func tupleType(conv *Converter, params []*spec.Param) string {
	slots := make([]string, 0, len(params))
	for _, p := range params {
		slot := conv.Convert(p.Schema, "")
		if !p.Required {
			slot += " | undefined"
		}
		slots = append(slots, slot)
	}
	return "[" + strings.Join(slots, ", ") + "]"
}

// paramsSchema synthesizes one object schema from a by-name parameter list so
// it converts through the regular object path.
func paramsSchema(params []*spec.Param) *spec.Schema {
	s := &spec.Schema{Kind: spec.KindObject}
	for _, p := range params {
		s.Properties = append(s.Properties, spec.Property{Name: p.Name, Schema: p.Schema})
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

// defaultServerURL picks servers[0].url with variable defaults substituted.
func defaultServerURL(servers []spec.Server) string {
	if len(servers) == 0 {
		return ""
	}
	url := servers[0].URL
	for name, v := range servers[0].Variables {
		url = strings.ReplaceAll(url, "{"+name+"}", v.Default)
	}
	return url
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderClient(data *templateData) ([]byte, error) {
	text, err := templateFS.ReadFile("templates/client.ts.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	tpl, err := template.New("client").Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, content []byte) error {
	tmp := path + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
