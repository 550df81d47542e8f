package spec

import (
	"encoding/json"
	"fmt"
)

// Internal model of an OpenRPC document. The document is loaded once and is
// read-only for the duration of a generation run.

// ParamStructure describes how a method expects its parameters on the wire.
type ParamStructure string

const (
	ByName     ParamStructure = "by-name"
	ByPosition ParamStructure = "by-position"
	Either     ParamStructure = "either"
)

// Document is the top-level OpenRPC document.
type Document struct {
	OpenRPC    string     `json:"openrpc"`
	Info       Info       `json:"info"`
	Servers    []Server   `json:"servers,omitempty"`
	Methods    []Method   `json:"methods"`
	Components Components `json:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type Server struct {
	Name      string                    `json:"name,omitempty"`
	URL       string                    `json:"url"`
	Variables map[string]ServerVariable `json:"variables,omitempty"`
}

type ServerVariable struct {
	Default     string   `json:"default"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Components holds the reusable pieces a document may reference.
type Components struct {
	Schemas            map[string]*Schema   `json:"schemas,omitempty"`
	ContentDescriptors map[string]*Param    `json:"contentDescriptors,omitempty"`
	Errors             map[string]*ErrorDef `json:"errors,omitempty"`
}

// Method is a single RPC method. A nil Result marks a notification.
type Method struct {
	Name           string         `json:"name"`
	Summary        string         `json:"summary,omitempty"`
	Description    string         `json:"description,omitempty"`
	Tags           []Tag          `json:"tags,omitempty"`
	ParamStructure ParamStructure `json:"paramStructure,omitempty"`
	Params         []*Param       `json:"params,omitempty"`
	Result         *Param         `json:"result,omitempty"`
	Errors         []*ErrorDef    `json:"errors,omitempty"`
	Deprecated     bool           `json:"deprecated,omitempty"`
}

// IsNotification reports whether the method declares no result.
func (m *Method) IsNotification() bool { return m.Result == nil }

// Structure returns the effective parameter structure, defaulting to "either".
func (m *Method) Structure() ParamStructure {
	if m.ParamStructure == "" {
		return Either
	}
	return m.ParamStructure
}

// Param is a Content Descriptor: a named schema with metadata. Entries inside
// a method may instead be a reference into components.contentDescriptors, in
// which case only Ref is set until resolution.
type Param struct {
	Ref         string  `json:"$ref,omitempty"`
	Name        string  `json:"name,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty"`
}

// ErrorDef is an application-defined error a method may return.
type ErrorDef struct {
	Ref     string  `json:"$ref,omitempty"`
	Code    int     `json:"code"`
	Message string  `json:"message,omitempty"`
	Data    *Schema `json:"data,omitempty"`
}

// Tag accepts both the OpenRPC tag-object form and a bare string.
type Tag struct {
	Name string `json:"name"`
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Name)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tag: %w", err)
	}
	t.Name = obj.Name
	return nil
}

func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string `json:"name"`
	}{Name: t.Name})
}
