package assistant

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/assistant.yaml
var promptsYAML []byte

type promptFile struct {
	Voice struct {
		System   string `yaml:"system"`
		Template string `yaml:"template"`
	} `yaml:"voice"`
	Chat struct {
		Template string `yaml:"template"`
	} `yaml:"chat"`
	FAQ struct {
		Template string `yaml:"template"`
	} `yaml:"faq"`
	Support struct {
		Template string `yaml:"template"`
	} `yaml:"support"`
}

// Prompts holds the parsed templates of every assistant surface.
type Prompts struct {
	VoiceSystem string
	voice       *template.Template
	chat        *template.Template
	faq         *template.Template
	support     *template.Template
}

// LoadPrompts parses the embedded prompt file.
func LoadPrompts() (*Prompts, error) {
	return ParsePrompts(promptsYAML)
}

func ParsePrompts(raw []byte) (*Prompts, error) {
	var file promptFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	p := &Prompts{VoiceSystem: file.Voice.System}
	var err error
	if p.voice, err = parseTemplate("voice", file.Voice.Template); err != nil {
		return nil, err
	}
	if p.chat, err = parseTemplate("chat", file.Chat.Template); err != nil {
		return nil, err
	}
	if p.faq, err = parseTemplate("faq", file.FAQ.Template); err != nil {
		return nil, err
	}
	if p.support, err = parseTemplate("support", file.Support.Template); err != nil {
		return nil, err
	}
	return p, nil
}

func parseTemplate(name, body string) (*template.Template, error) {
	if body == "" {
		return nil, fmt.Errorf("prompt %q is empty", name)
	}
	tpl, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %q: %w", name, err)
	}
	return tpl, nil
}

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
