package aidraft

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"

	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
	"github.com/dmitrymomot/resumekit/svc/resume"
)

// ChatCompleter is the subset of *openai.Client used for drafting.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIGate is the subset of *subscription.Gate the drafter needs.
type AIGate interface {
	RequireAITools(ctx context.Context, userID string) (subscription.Tier, error)
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// NewClient builds an OpenAI client from cfg.
func NewClient(cfg Config) *openai.Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(oc)
}

// Drafter writes résumé text with a chat model. Only users entitled to AI
// tools get past the gate; the model is never called otherwise.
type Drafter struct {
	llm      ChatCompleter
	gate     AIGate
	model    string
	validate *validator.Validate
	log      *slog.Logger
}

// NewDrafter creates a Drafter. An empty model falls back to gpt-4o-mini.
func NewDrafter(llm ChatCompleter, gate AIGate, model string, log *slog.Logger) *Drafter {
	if llm == nil || gate == nil {
		panic("aidraft: completer and gate are required")
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Drafter{
		llm:      llm,
		gate:     gate,
		model:    model,
		validate: resume.NewValidator(),
		log:      log.With(logger.Component("aidraft")),
	}
}

// GenerateSummary drafts a professional summary.
func (d *Drafter) GenerateSummary(ctx context.Context, userID string, in SummaryInput) (string, error) {
	if err := d.authorize(ctx, userID, in); err != nil {
		return "", err
	}
	return d.complete(ctx, userID, "summary", summarySystemPrompt, summaryUserPrompt(in))
}

// GenerateWorkExperience drafts a structured job entry from free text.
func (d *Drafter) GenerateWorkExperience(ctx context.Context, userID string, in WorkExperienceInput) (*WorkExperience, error) {
	if err := d.authorize(ctx, userID, in); err != nil {
		return nil, err
	}
	text, err := d.complete(ctx, userID, "work_experience", workExperienceSystemPrompt, workExperienceUserPrompt(in))
	if err != nil {
		return nil, err
	}
	exp := ParseWorkExperience(text)
	return &exp, nil
}

func (d *Drafter) authorize(ctx context.Context, userID string, in any) error {
	if _, err := d.gate.RequireAITools(ctx, userID); err != nil {
		return err
	}
	if err := d.validate.Struct(in); err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	return nil
}

func (d *Drafter) complete(ctx context.Context, userID, kind, system, user string) (string, error) {
	resp, err := d.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		d.log.ErrorContext(ctx, "chat completion failed",
			logger.UserID(userID),
			slog.String("kind", kind),
			logger.Error(err),
		)
		return "", errors.Join(ErrModelUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}

	d.log.DebugContext(ctx, "draft generated",
		logger.UserID(userID),
		slog.String("kind", kind),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return text, nil
}
