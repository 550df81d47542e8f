// Package goemitter renders Gorilla RPC v2 server declarations from a
// resolved OpenRPC document: one always-regenerated types file and one
// write-once scaffolding file with placeholder service implementations.
package goemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/tools/imports"

	"github.com/openrpckit/openrpcgen/internal/errcat"
	"github.com/openrpckit/openrpcgen/internal/naming"
	"github.com/openrpckit/openrpcgen/internal/organize"
	"github.com/openrpckit/openrpcgen/internal/spec"
	"github.com/openrpckit/openrpcgen/internal/typereg"
)

// Options controls how the Go emitter renders its two files.
type Options struct {
	OutPath     string // required; path of the types file
	PackageName string // generated package name; defaults to "main"
	DryRun      bool   // don't write, only plan
	Verbose     bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	Path      string
	Size      int
	WriteOnce bool
	Skipped   bool // write-once target already exists
}

// Result reports what was (or would be) written.
type Result struct {
	TypesPath string
	MainPath  string
	Planned   []PlannedFile
}

// Emit renders the types and scaffolding files for the given resolved
// methods. The types file at OutPath is regenerated unconditionally; the
// companion <stem>_main<ext> file is written only when absent so hand-edited
// scaffolding survives regeneration.
func Emit(ctx context.Context, doc *spec.Document, methods []spec.Method, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("goemitter: nil document")
	}
	if strings.TrimSpace(opts.OutPath) == "" {
		return nil, fmt.Errorf("goemitter: OutPath is required")
	}
	pkg := strings.TrimSpace(opts.PackageName)
	if pkg == "" {
		pkg = "main"
	}

	reg := typereg.New()
	conv := NewConverter(doc.Components, reg)

	services := buildServices(conv, organize.Group(methods))
	errorDecls := buildErrorDecls(conv, errcat.Build(methods))
	port := defaultPort(doc.Servers)

	data := &templateData{
		Title:         doc.Info.Title,
		SpecVersion:   doc.Info.Version,
		PackageName:   pkg,
		TypeDecls:     reg.Decls(),
		ErrorDecls:    errorDecls,
		Services:      services,
		DefaultPort:   port,
		IsMainPackage: pkg == "main",
	}

	typesSrc, err := renderTypes(data)
	if err != nil {
		return nil, err
	}
	mainSrc, err := renderMain(data)
	if err != nil {
		return nil, err
	}

	typesPath := opts.OutPath
	mainPath := companionPath(typesPath)
	mainExists := false
	if _, err := os.Stat(mainPath); err == nil {
		mainExists = true
	}

	res := &Result{
		TypesPath: typesPath,
		MainPath:  mainPath,
		Planned: []PlannedFile{
			{Path: typesPath, Size: len(typesSrc)},
			{Path: mainPath, Size: len(mainSrc), WriteOnce: true, Skipped: mainExists},
		},
	}

	if opts.DryRun {
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(typesPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	if err := writeFileAtomic(typesPath, typesSrc); err != nil {
		return nil, err
	}
	log.Debug().Str("path", typesPath).Msg("generated types file")

	if mainExists {
		log.Debug().Str("path", mainPath).Msg("scaffolding exists, left untouched")
		return res, nil
	}
	if err := writeFileAtomic(mainPath, mainSrc); err != nil {
		return nil, err
	}
	log.Debug().Str("path", mainPath).Msg("generated scaffolding file")
	return res, nil
}

// companionPath derives the write-once scaffolding path: server.go ->
// server_main.go.
func companionPath(typesPath string) string {
	ext := filepath.Ext(typesPath)
	stem := strings.TrimSuffix(typesPath, ext)
	return stem + "_main" + ext
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

// gofmt runs the generated source through goimports. Formatting failure means
// the generator produced odd output; the raw text is still written so the
// user can inspect it.
func gofmt(path string, src []byte) []byte {
	formatted, err := imports.Process(path, src, nil)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("generated source could not be formatted")
		return src
	}
	return formatted
}

// serviceData is the per-service slice of the render context.
type serviceData struct {
	Name      string
	Namespace string
	Methods   []methodData
}

type methodData struct {
	RPCName        string
	MethodName     string
	Summary        string
	ArgsType       string
	ReplyType      string
	ArgsDecl       string
	ReplyDecl      string
	Signature      string
	StubDecl       string
	IsNotification bool
	IsPositional   bool
	HasArgs        bool
}

// buildServices derives per-method Args/Reply declarations, converting every
// parameter and result schema through the shared registry.
func buildServices(conv *Converter, groups []organize.Service) []serviceData {
	services := make([]serviceData, 0, len(groups))
	for _, g := range groups {
		sd := serviceData{Name: g.Name, Namespace: g.Namespace}
		for _, m := range g.Methods {
			md := buildMethod(conv, g.Name, m)
			sd.Methods = append(sd.Methods, md)
		}
		services = append(services, sd)
	}
	return services
}

func buildMethod(conv *Converter, serviceName string, m organize.Method) methodData {
	argsType := serviceName + m.MethodName + "Args"
	replyType := serviceName + m.MethodName + "Reply"

	md := methodData{
		RPCName:        m.Name,
		MethodName:     m.MethodName,
		Summary:        m.Summary,
		ArgsType:       argsType,
		ReplyType:      replyType,
		IsNotification: m.IsNotification(),
		IsPositional:   m.Structure() == spec.ByPosition,
		HasArgs:        len(m.Params) > 0,
	}

	md.ArgsDecl = argsDecl(conv, argsType, m.Params)

	if !md.IsNotification {
		md.ReplyDecl = replyDecl(conv, serviceName, m.MethodName, replyType, m.Result)
	}

	if md.IsNotification {
		md.Signature = fmt.Sprintf("%s(r *http.Request, args *%s) error", m.MethodName, argsType)
	} else {
		md.Signature = fmt.Sprintf("%s(r *http.Request, args *%s, reply *%s) error", m.MethodName, argsType, replyType)
	}
	md.StubDecl = fmt.Sprintf("func (s *%s) %s {\n\t// TODO: implement %s\n\treturn nil\n}",
		serviceName, md.Signature, m.Name)
	return md
}

// argsDecl renders the Args struct for a method's parameter list. Positional
// methods keep declaration order; optional parameters become pointers so an
// absent slot stays representable.
func argsDecl(conv *Converter, argsType string, params []*spec.Param) string {
	if len(params) == 0 {
		return fmt.Sprintf("type %s struct{}", argsType)
	}
	fields := make([]string, 0, len(params))
	for _, p := range params {
		goName := naming.FieldIdentifier(p.Name)
		goType := conv.FieldType(p.Schema, goName, argsType)
		fields = append(fields, fieldLine(p.Name, goName, goType, p.Required))
	}
	return structDecl(argsType, fields)
}

// replyDecl renders the Reply declaration for a method result. A $ref result
// aliases the referenced named type; object results get a named Result
// struct; arrays and scalars are wrapped so the reply is always addressable.
func replyDecl(conv *Converter, serviceName, methodName, replyType string, result *spec.Param) string {
	resultStruct := serviceName + methodName + "Result"

	if result == nil || result.Schema == nil {
		return fmt.Sprintf("type %s struct{}", replyType)
	}
	schema := result.Schema

	var target string
	switch schema.Kind {
	case spec.KindRef:
		target = conv.ResolveRef(schema.Ref)
	case spec.KindObject:
		target = conv.Convert(schema, resultStruct)
	case spec.KindArray:
		itemType := conv.Convert(schema, "")
		if conv.Registry().Reserve(resultStruct) {
			conv.Registry().Bind(resultStruct, structDecl(resultStruct, []string{
				fmt.Sprintf("\tItems %s `json:\"items\"`", itemType),
			}))
		}
		target = resultStruct
	default:
		goType := conv.Convert(schema, "")
		if conv.Registry().Reserve(resultStruct) {
			conv.Registry().Bind(resultStruct, structDecl(resultStruct, []string{
				fmt.Sprintf("\tResult %s `json:\"result\"`", goType),
			}))
		}
		target = resultStruct
	}
	return fmt.Sprintf("type %s = %s", replyType, target)
}

// buildErrorDecls renders one error type per catalog entry. An error with a
// data schema gets a typed Data field.
func buildErrorDecls(conv *Converter, entries []errcat.Entry) []string {
	decls := make([]string, 0, len(entries))
	for _, e := range entries {
		dataType := "interface{}"
		if e.Data != nil {
			dataType = conv.Convert(e.Data, e.TypeName+"Data")
		}
		var b strings.Builder
		fmt.Fprintf(&b, "// %s is RPC error code %d.\n", e.TypeName, e.Code)
		fmt.Fprintf(&b, "type %s struct {\n\tData %s `json:\"data,omitempty\"`\n}\n\n", e.TypeName, dataType)
		fmt.Fprintf(&b, "func (e *%s) Error() string { return %q }\n\n", e.TypeName, e.Message)
		fmt.Fprintf(&b, "func (e *%s) ErrorCode() int { return %d }", e.TypeName, e.Code)
		decls = append(decls, b.String())
	}
	return decls
}

// defaultPort extracts the listen port from the first server URL, applying
// variable defaults, falling back to the scheme's standard port, else 8080.
func defaultPort(servers []spec.Server) string {
	if len(servers) == 0 {
		return "8080"
	}
	url := servers[0].URL
	for name, v := range servers[0].Variables {
		url = strings.ReplaceAll(url, "{"+name+"}", v.Default)
	}
	if m := portRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if strings.HasPrefix(url, "https://") {
		return "443"
	}
	if strings.HasPrefix(url, "http://") {
		return "80"
	}
	return "8080"
}
