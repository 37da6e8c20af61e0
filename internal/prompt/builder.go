package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type TemplateName string

const (
	TemplateDiagnosis TemplateName = "diagnosis.tmpl"
)

var funcs = template.FuncMap{
	"grouped": grouped,
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
}

// PromptBuilder parses every embedded template on first use.
type PromptBuilder struct {
	once    sync.Once
	set     *template.Template
	loadErr error
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	pb.once.Do(func() {
		pb.set, pb.loadErr = template.New("prompts").
			Funcs(funcs).
			Option("missingkey=error").
			ParseFS(templateFS, "templates/*.tmpl")
	})
	if pb.loadErr != nil {
		return "", fmt.Errorf("load prompt templates: %w", pb.loadErr)
	}

	tmpl := pb.set.Lookup(string(name))
	if tmpl == nil {
		return "", fmt.Errorf("unknown prompt template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// grouped formats n with comma thousands separators.
func grouped(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
