package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func request() models.DescriptionRequest {
	return models.DescriptionRequest{
		Brand: "Mazda", Model: "CX-5", Year: 2021, Mileage: 30000,
		Condition: "used", Features: []string{"Techo solar", "Apple CarPlay"},
	}
}

func TestDescribeUsesGenerator(t *testing.T) {
	gen := &stubGenerator{text: "  Excelente camioneta.  "}
	out, err := NewService(gen).Describe(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "Excelente camioneta.", out)
	assert.Contains(t, gen.prompt, "Mazda")
	assert.Contains(t, gen.prompt, "Techo solar, Apple CarPlay")
}

func TestDescribeTruncatesLongOutput(t *testing.T) {
	gen := &stubGenerator{text: strings.Repeat("ñ", maxDescription+50)}
	out, err := NewService(gen).Describe(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, maxDescription, utf8.RuneCountInString(out))
}

func TestDescribeValidatesAndReportsUnavailable(t *testing.T) {
	_, err := NewService(nil).Describe(context.Background(), request())
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = NewService(&stubGenerator{}).Describe(context.Background(), models.DescriptionRequest{})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "brand")
}

func TestNewGeminiWithoutKey(t *testing.T) {
	assert.Nil(t, NewGemini(config.GeminiConfig{}))
	g := NewGemini(config.GeminiConfig{APIKey: "k"})
	require.NotNil(t, g)
	assert.Equal(t, defaultModel, g.model)
}
