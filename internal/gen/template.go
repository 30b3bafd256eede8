package gen

import "text/template"

// templateData holds data for the file template.
type templateData struct {
	Header      string
	PackageName string
	Imports     []importSpec
	Structs     []structData

	// Selector prefixes of the runtime, JSON and YAML packages. YAML is
	// empty when UnmarshalYAML is not generated.
	RT   string
	JSON string
	YAML string

	// Local names.
	Raw, Out, Err, Data, Node, Dst string
}

// structData holds data for one struct.
type structData struct {
	Name       string
	RawName    string
	Fields     []fieldData
	Validator  string
	ChecksOnly bool
}

// fieldData holds data for one raw record field and its validation call.
type fieldData struct {
	Name     string
	WireType string
	Tag      string
	Call     string
}

var fileTemplate = template.Must(template.New("sanitize").Parse(`{{.Header}}

package {{.PackageName}}
{{- if .Imports}}

import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{- end}}
{{- range $s := .Structs}}

// {{.RawName}} is the undecoded form of {{.Name}}.
type {{.RawName}} struct {
{{- range .Fields}}
	{{.Name}} {{.WireType}}{{if .Tag}} {{.Tag}}{{end}}
{{- end}}
}

// sanitize validates every field in declaration order, then the whole
// structure. The first failure is returned.
func ({{$.Raw}} {{.RawName}}) sanitize() ({{.Name}}, error) {
{{- if or .Fields .Validator}}
	var (
		{{$.Out}} {{.Name}}
		{{$.Err}} error
	)
{{- else}}
	var {{$.Out}} {{.Name}}
{{- end}}
{{- range .Fields}}

	if {{$.Out}}.{{.Name}}, {{$.Err}} = {{.Call}}; {{$.Err}} != nil {
		return {{$s.Name}}{}, {{$.RT}}Custom("{{$s.Name}}", "{{.Name}}", {{$.Err}})
	}
{{- end}}
{{- if .Validator}}

	if {{if .ChecksOnly}}{{$.Err}}{{else}}{{$.Out}}, {{$.Err}}{{end}} = {{.Validator}}({{$.Out}}); {{$.Err}} != nil {
		return {{.Name}}{}, {{$.RT}}Custom("{{.Name}}", "", {{$.Err}})
	}
{{- end}}

	return {{$.Out}}, nil
}

// UnmarshalJSON decodes and validates a {{.Name}}. A JSON null leaves it
// unchanged.
func ({{$.Dst}} *{{.Name}}) UnmarshalJSON({{$.Data}} []byte) error {
	if string({{$.Data}}) == "null" {
		return nil
	}

	var {{$.Raw}} {{.RawName}}
	if {{$.Err}} := {{$.JSON}}Unmarshal({{$.Data}}, &{{$.Raw}}); {{$.Err}} != nil {
		return {{$.Err}}
	}

	{{$.Out}}, {{$.Err}} := {{$.Raw}}.sanitize()
	if {{$.Err}} != nil {
		return {{$.Err}}
	}

	*{{$.Dst}} = {{$.Out}}

	return nil
}
{{- if $.YAML}}

// UnmarshalYAML decodes and validates a {{.Name}}.
func ({{$.Dst}} *{{.Name}}) UnmarshalYAML({{$.Node}} *{{$.YAML}}Node) error {
	var {{$.Raw}} {{.RawName}}
	if {{$.Err}} := {{$.Node}}.Decode(&{{$.Raw}}); {{$.Err}} != nil {
		return {{$.Err}}
	}

	{{$.Out}}, {{$.Err}} := {{$.Raw}}.sanitize()
	if {{$.Err}} != nil {
		return {{$.Err}}
	}

	*{{$.Dst}} = {{$.Out}}

	return nil
}
{{- end}}
{{- end}}
`))
