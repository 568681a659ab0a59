package resume

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

// Gatekeeper is the subset of *subscription.Gate the service needs.
type Gatekeeper interface {
	RequireResumeSlot(ctx context.Context, userID string, currentCount int64) (subscription.Tier, error)
	RequireCustomizations(ctx context.Context, userID string) (subscription.Tier, error)
}

// Service applies tier gates on top of a Repository.
type Service struct {
	repo     Repository
	gate     Gatekeeper
	validate *validator.Validate
	log      *slog.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(repo Repository, gate Gatekeeper, log *slog.Logger) *Service {
	if repo == nil || gate == nil {
		panic("resume: repository and gate are required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:     repo,
		gate:     gate,
		validate: NewValidator(),
		log:      log.With(logger.Component("resume")),
	}
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Create stores a new résumé if the user's tier has a free slot.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Resume, error) {
	if userID == "" {
		return nil, subscription.ErrUnauthenticated
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	count, err := s.repo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	tier, err := s.gate.RequireResumeSlot(ctx, userID, count)
	if err != nil {
		return nil, err
	}

	r, err := s.repo.Create(ctx, Resume{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		BorderStyle: DefaultBorderStyle,
		AccentColor: DefaultAccentColor,
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "resume created",
		logger.UserID(userID),
		logger.Tier(tier.String()),
		slog.String("resume_id", r.ID.String()),
		slog.Int64("owned", count+1),
	)
	return r, nil
}

// UpdateStyle changes the border style and accent color. Customizing requires
// a paid tier; resetting to the defaults is always allowed.
func (s *Service) UpdateStyle(ctx context.Context, userID string, id uuid.UUID, in StyleInput) (*Resume, error) {
	if userID == "" {
		return nil, subscription.ErrUnauthenticated
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	border := cmp.Or(in.BorderStyle, current.BorderStyle, DefaultBorderStyle)
	color := strings.ToLower(cmp.Or(in.AccentColor, current.AccentColor, DefaultAccentColor))

	if !IsDefaultStyle(border, color) {
		if _, err := s.gate.RequireCustomizations(ctx, userID); err != nil {
			return nil, err
		}
	}

	return s.repo.UpdateStyle(ctx, userID, id, border, color)
}

// Get returns one of the user's résumés.
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Resume, error) {
	if userID == "" {
		return nil, subscription.ErrUnauthenticated
	}
	return s.repo.Get(ctx, userID, id)
}

// List returns the user's résumés, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	if userID == "" {
		return nil, subscription.ErrUnauthenticated
	}
	return s.repo.List(ctx, userID)
}
