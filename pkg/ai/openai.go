package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gradeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rubric",
		Subsystem: "grading",
		Name:      "provider_duration_seconds",
		Help:      "Duration of grading provider requests",
	}, []string{"model"})

	gradeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rubric",
		Subsystem: "grading",
		Name:      "provider_failures_total",
		Help:      "Number of failed grading provider requests",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the chat-completion grader.
type OpenAIConfig struct {
	APIKey string
	// BaseURL points the client at any OpenAI-compatible endpoint; empty
	// means the default OpenAI API.
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	// RequestTimeout bounds each grading call. The upstream API has no
	// deadline of its own, so an unset timeout would block the submit
	// request indefinitely.
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// OpenAIGrader implements Grader against an OpenAI-compatible chat API.
type OpenAIGrader struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGrader builds a grader using the provided configuration.
func NewOpenAIGrader(cfg OpenAIConfig) (*OpenAIGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("grading api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 45 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIGrader{
		client: newClient(cfg.APIKey, cfg.BaseURL),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/skilltrack/rubric-api/pkg/ai/openai"),
		logger: logger.With().Str("component", "openai_grader").Logger(),
	}, nil
}

func newClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

// Grade sends the document and rubric prompt to the provider and parses the
// reply. Transport failures are returned as errors; unparsable replies come
// back as degraded results via ParseGradeResponse.
func (g *OpenAIGrader) Grade(parent context.Context, input GradeInput) (GradeResult, error) {
	ctx, span := g.tracer.Start(parent, "grading.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.RequestTimeout)
	defer cancel()

	client := g.client
	if input.Credential != "" {
		// Per-assignment credential overrides the service-wide key.
		client = newClient(input.Credential, g.cfg.BaseURL)
	}

	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an assistant that evaluates student coursework.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserMessage(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, request)
	gradeDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		gradeFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeResult{}, fmt.Errorf("grading provider: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from grading provider")
		gradeFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result := ParseGradeResponse(content)
	if result.Degraded {
		gradeFailures.WithLabelValues(g.cfg.Model).Inc()
		g.logger.Warn().Str("reason", result.DegradedReason).Msg("grading reply was unparsable")
		span.SetAttributes(attribute.Bool("grading.degraded", true))
	}

	return result, nil
}

func buildUserMessage(input GradeInput) string {
	builder := strings.Builder{}
	builder.WriteString(BuildPrompt(input.Topic))
	if input.AssignmentTitle != "" {
		builder.WriteString("\n\nAssignment: ")
		builder.WriteString(input.AssignmentTitle)
	}
	builder.WriteString("\n\nSubmission text:\n")
	builder.WriteString(input.DocumentText)
	return builder.String()
}
