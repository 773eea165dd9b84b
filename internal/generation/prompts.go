package generation

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// operationConfig holds everything that differs between the three operations.
type operationConfig struct {
	template          string
	systemInstruction string
	resultField       string
}

var operationConfigs = map[Operation]operationConfig{
	OperationSummarize: {
		template:          "summarize.tmpl",
		systemInstruction: "You are an editor who writes faithful, concise summaries.",
		resultField:       "summary",
	},
	OperationGenerate: {
		template: "generate.tmpl",
		systemInstruction: "You are a social media copywriter. Return only the post text, " +
			"without preamble or surrounding quotes.",
		resultField: "post",
	},
	OperationTune: {
		template: "tune.tmpl",
		systemInstruction: "You are a social media editor revising an existing post. Return only " +
			"the revised post text, without preamble or surrounding quotes.",
		resultField: "tunedPost",
	},
}

// promptData is the template input for all operations.
type promptData struct {
	Content      string
	Summary      string
	PostContent  string
	Instruction  string
	Persona      string
	PlatformName string
	Guidance     string
	MaxLength    int
}

// promptSet holds the parsed templates.
type promptSet struct {
	templates *template.Template
}

func loadPrompts() (*promptSet, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt templates: %v", ErrInvalidConfig, err)
	}
	return &promptSet{templates: tmpl}, nil
}

// render builds the Call for a validated request.
func (p *promptSet) render(req Request) (Call, error) {
	opCfg, ok := operationConfigs[req.Operation]
	if !ok {
		return Call{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, req.Operation)
	}

	data := promptData{
		Content:     req.Content,
		Summary:     req.Summary,
		PostContent: req.PostContent,
		Instruction: req.Instruction,
		Persona:     req.Persona,
	}
	if req.Platform.Valid() {
		data.PlatformName = req.Platform.DisplayName()
		data.Guidance = req.Platform.Guidance()
		data.MaxLength = req.Platform.MaxLength()
	}

	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, opCfg.template, data); err != nil {
		return Call{}, fmt.Errorf("failed to execute prompt template %s: %w", opCfg.template, err)
	}

	return Call{
		Operation:         req.Operation,
		SystemInstruction: opCfg.systemInstruction,
		Prompt:            buf.String(),
		ResultField:       opCfg.resultField,
	}, nil
}
