// Package assistant turns free text into generation calls, parses the
// model's reply and dispatches the actions it asks for.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/llm"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

const (
	SurfaceVoice   = "voice"
	SurfaceChat    = "chat"
	SurfaceFAQ     = "faq"
	SurfaceSupport = "support"
)

const (
	ChatFallback    = "No puedo procesar eso ahora mismo."
	FAQFallback     = "No entiendo la consulta. Prueba a hablar con un humano."
	SupportFallback = "Disculpa, he tenido un pequeño error de conexión. ¿Puedes repetir?"
)

const (
	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// Recorder receives per-surface call metrics.
type Recorder interface {
	Observe(surface, outcome string, elapsed time.Duration)
	IncAction(kind string)
}

type noopRecorder struct{}

func (noopRecorder) Observe(string, string, time.Duration) {}
func (noopRecorder) IncAction(string)                      {}

// VoiceReply is what the ambient assistant says and what the client should
// do next.
type VoiceReply struct {
	Text       string      `json:"text"`
	Actions    []Action    `json:"actions"`
	Directives []Directive `json:"directives"`
}

// Service exposes the four assistant surfaces.
type Service interface {
	Voice(ctx context.Context, user models.User, input string) (VoiceReply, error)
	Chat(ctx context.Context, user models.User, orderID, text string) (*models.Order, error)
	FAQ(ctx context.Context, user models.User, input string) (string, error)
	Support(ctx context.Context, user models.User, input string) (string, error)
}

type service struct {
	orders    orders.Service
	generator llm.Generator
	prompts   *Prompts
	logg      *logger.Logger
	recorder  Recorder
	dispatch  dispatcher
}

type Option func(*service)

func WithRecorder(r Recorder) Option {
	return func(s *service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithPrompts(p *Prompts) Option {
	return func(s *service) {
		if p != nil {
			s.prompts = p
		}
	}
}

func NewService(orderSvc orders.Service, generator llm.Generator, logg *logger.Logger, opts ...Option) (Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &service{
		orders:    orderSvc,
		generator: generator,
		logg:      logg,
		recorder:  noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.prompts == nil {
		prompts, err := LoadPrompts()
		if err != nil {
			return nil, err
		}
		s.prompts = prompts
	}
	s.dispatch = dispatcher{orders: orderSvc, logg: logg, recorder: s.recorder}
	return s, nil
}

type voiceData struct {
	Name         string
	Role         string
	Neighborhood string
	Market       []models.Order
	Mine         []models.Order
	Input        string
}

func (s *service) Voice(ctx context.Context, user models.User, input string) (VoiceReply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return VoiceReply{}, pkgerrors.New(pkgerrors.CodeValidation, "input required")
	}
	actor, err := orders.ActorFor(user)
	if err != nil {
		return VoiceReply{}, err
	}
	ctx = s.logg.WithUserID(ctx, user.ID)

	var mine []models.Order
	for _, o := range s.orders.MyOrders(actor) {
		if o.Status != enums.OrderStatusFinalized {
			mine = append(mine, o)
		}
	}
	prompt, err := render(s.prompts.voice, voiceData{
		Name:         user.Name,
		Role:         actor.Role().Label(),
		Neighborhood: user.Neighborhood,
		Market:       s.orders.Market(),
		Mine:         mine,
		Input:        input,
	})
	if err != nil {
		return VoiceReply{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render voice prompt")
	}

	raw, err := s.generate(ctx, SurfaceVoice, llm.Request{
		System: s.prompts.VoiceSystem,
		Prompt: prompt,
		Schema: EnvelopeSchema(),
	})
	if err != nil {
		return VoiceReply{Text: fmt.Sprintf("Lo siento %s, perdí la conexión.", user.Name)}, nil
	}
	if raw == "" {
		return VoiceReply{Text: fmt.Sprintf("Lo siento %s, no te oí bien.", user.Name)}, nil
	}

	reply := ParseReply(raw)
	if reply.Rejected > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "rejected", reply.Rejected), "assistant.actions_rejected")
	}
	text := reply.Text
	if text == "" {
		text = fmt.Sprintf("Hecho, %s.", user.Name)
	}
	return VoiceReply{
		Text:       text,
		Actions:    reply.Actions,
		Directives: s.dispatch.dispatch(ctx, actor, reply.Actions),
	}, nil
}

// ShouldAnswer reports whether a chat message asks something the assistant
// answers on the courier's behalf.
func ShouldAnswer(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "?") || strings.Contains(lower, "donde") || strings.Contains(lower, "cuanto")
}

type chatData struct {
	Order     models.Order
	InTransit bool
	Input     string
}

// Chat appends the user's message and, for questions, an assistant reply.
func (s *service) Chat(ctx context.Context, user models.User, orderID, text string) (*models.Order, error) {
	actor, err := orders.ActorFor(user)
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.Get(ctx, actor, orderID); err != nil {
		return nil, err
	}
	updated, err := s.orders.SendMessage(ctx, actor, orders.MessageInput{OrderID: orderID, Text: text})
	if err != nil {
		return nil, err
	}
	if !ShouldAnswer(text) {
		return updated, nil
	}

	ctx = s.logg.WithOrderID(ctx, orderID)
	answer := ChatFallback
	prompt, err := render(s.prompts.chat, chatData{
		Order:     *updated,
		InTransit: updated.Status == enums.OrderStatusInTransit,
		Input:     strings.TrimSpace(text),
	})
	if err != nil {
		s.logg.Error(ctx, "assistant.prompt_failed", err)
	} else if out, genErr := s.generate(ctx, SurfaceChat, llm.Request{Prompt: prompt}); genErr == nil && out != "" {
		answer = out
	}

	return s.orders.SendMessage(ctx, actor, orders.MessageInput{
		OrderID:       orderID,
		Text:          answer,
		FromAssistant: true,
	})
}

type helpData struct {
	Name          string
	Role          string
	CourierFee    string
	Neighborhoods string
	Input         string
}

func (s *service) FAQ(ctx context.Context, user models.User, input string) (string, error) {
	return s.answer(ctx, SurfaceFAQ, user, input, FAQFallback)
}

func (s *service) Support(ctx context.Context, user models.User, input string) (string, error) {
	return s.answer(ctx, SurfaceSupport, user, input, SupportFallback)
}

func (s *service) answer(ctx context.Context, surface string, user models.User, input, fallback string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "input required")
	}
	tpl := s.prompts.faq
	if surface == SurfaceSupport {
		tpl = s.prompts.support
	}
	prompt, err := render(tpl, helpData{
		Name:          user.Name,
		Role:          user.RoleOrEmpty().Label(),
		CourierFee:    reference.CourierFee.StringFixed(2),
		Neighborhoods: strings.Join(reference.NeighborhoodNames(), ", "),
		Input:         input,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render prompt")
	}
	out, err := s.generate(s.logg.WithUserID(ctx, user.ID), surface, llm.Request{Prompt: prompt})
	if err != nil || out == "" {
		return fallback, nil
	}
	return out, nil
}

func (s *service) generate(ctx context.Context, surface string, req llm.Request) (string, error) {
	start := time.Now()
	out, err := s.generator.Generate(ctx, req)
	out = strings.TrimSpace(out)
	outcome := outcomeOK
	switch {
	case err != nil:
		outcome = outcomeError
		s.logg.Error(s.logg.WithField(ctx, "surface", surface), "assistant.generate_failed", err)
	case out == "":
		outcome = outcomeEmpty
	}
	s.recorder.Observe(surface, outcome, time.Since(start))
	return out, err
}
