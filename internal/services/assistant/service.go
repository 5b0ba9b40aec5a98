// Package assistant drafts listing descriptions with Google Gemini.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/validation"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModel   = "gemini-1.5-flash"
	maxDescription = 2000
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service interface {
	Describe(ctx context.Context, in models.DescriptionRequest) (string, error)
}

type service struct {
	gen Generator
}

// NewService returns a service backed by gen. A nil gen makes every call fail
// with domain.ErrUnavailable.
func NewService(gen Generator) Service {
	return &service{gen: gen}
}

func (s *service) Describe(ctx context.Context, in models.DescriptionRequest) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("%w: description assistant", domain.ErrUnavailable)
	}
	if err := validation.Struct(&in); err != nil {
		return "", err
	}
	text, err := s.gen.Generate(ctx, Prompt(in))
	if err != nil {
		return "", err
	}
	return truncate(strings.TrimSpace(text), maxDescription), nil
}

// Prompt builds the Spanish instruction sent to the model.
func Prompt(in models.DescriptionRequest) string {
	var b strings.Builder
	b.WriteString("Escribe una descripción atractiva y honesta en español para un anuncio de venta de vehículo en Colombia. ")
	b.WriteString("Máximo 120 palabras, sin inventar datos, sin precios ni datos de contacto.\n\n")
	fmt.Fprintf(&b, "Marca: %s\nModelo: %s\nAño: %d\nKilometraje: %d km\n", in.Brand, in.Model, in.Year, in.Mileage)
	if in.Condition != "" {
		fmt.Fprintf(&b, "Estado: %s\n", in.Condition)
	}
	if in.FuelType != "" {
		fmt.Fprintf(&b, "Combustible: %s\n", in.FuelType)
	}
	if len(in.Features) > 0 {
		fmt.Fprintf(&b, "Características: %s\n", strings.Join(in.Features, ", "))
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Gemini generates text through the Gemini API. The client is created on first use.
type Gemini struct {
	apiKey string
	model  string

	once   sync.Once
	client *genai.Client
	err    error
}

// NewGemini returns nil when no API key is configured.
func NewGemini(cfg config.GeminiConfig) *Gemini {
	if cfg.APIKey == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Gemini{apiKey: cfg.APIKey, model: model}
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(context.Background(), option.WithAPIKey(g.apiKey))
	})
	if g.err != nil {
		return "", &domain.UpstreamError{Service: "gemini", Err: g.err}
	}

	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.7)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &domain.UpstreamError{Service: "gemini", Err: err}
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
		break
	}
	if out.Len() == 0 {
		return "", &domain.UpstreamError{Service: "gemini", Err: fmt.Errorf("empty response")}
	}
	return out.String(), nil
}

func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}
