package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/barribox/barribox-backend/pkg/config"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"google.golang.org/genai"
)

type fakeModels struct {
	model    string
	contents []*genai.Content
	cfg      *genai.GenerateContentConfig
	deadline bool
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.cfg = cfg
	_, f.deadline = ctx.Deadline()
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGenerateStructured(t *testing.T) {
	fake := &fakeModels{resp: textResponse("  {\"version\":1}  ")}
	client := newClient(fake, config.GenAIConfig{Model: "gemini-test", Timeout: time.Second}, nil)

	schema := &genai.Schema{Type: genai.TypeObject}
	out, err := client.Generate(context.Background(), Request{System: "eres Barri", Prompt: "hola", Schema: schema})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `{"version":1}` {
		t.Fatalf("unexpected output %q", out)
	}
	if fake.model != "gemini-test" {
		t.Fatalf("unexpected model %q", fake.model)
	}
	if fake.cfg.ResponseMIMEType != "application/json" || fake.cfg.ResponseSchema != schema {
		t.Fatalf("expected json config, got %+v", fake.cfg)
	}
	if fake.cfg.SystemInstruction == nil {
		t.Fatal("expected system instruction")
	}
	if !fake.deadline {
		t.Fatal("expected timeout applied to context")
	}
	if len(fake.contents) != 1 || fake.contents[0].Parts[0].Text != "hola" {
		t.Fatalf("unexpected contents %+v", fake.contents)
	}
}

func TestGeneratePlainText(t *testing.T) {
	fake := &fakeModels{resp: textResponse("Hola")}
	client := newClient(fake, config.GenAIConfig{Model: "m"}, nil)

	if _, err := client.Generate(context.Background(), Request{Prompt: "p"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fake.cfg.ResponseMIMEType != "" || fake.cfg.ResponseSchema != nil {
		t.Fatalf("plain calls must not request json, got %+v", fake.cfg)
	}
	if fake.deadline {
		t.Fatal("no timeout configured, no deadline expected")
	}
}

func TestGenerateErrors(t *testing.T) {
	fake := &fakeModels{err: errors.New("boom")}
	client := newClient(fake, config.GenAIConfig{Model: "m"}, nil)

	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := client.Generate(context.Background(), Request{Prompt: " "}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	gen, err := New(context.Background(), config.GenAIConfig{}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := gen.Generate(context.Background(), Request{Prompt: "p"}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
