package editor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/resumekit/binder"
	"github.com/dmitrymomot/resumekit/handler"
	"github.com/dmitrymomot/resumekit/modules/apierr"
	"github.com/dmitrymomot/resumekit/pkg/jwt"
	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/svc/aidraft"
	"github.com/dmitrymomot/resumekit/svc/resume"
)

// Resumes is the subset of *resume.Service used by the routes.
type Resumes interface {
	Create(ctx context.Context, userID string, in resume.CreateInput) (*resume.Resume, error)
	UpdateStyle(ctx context.Context, userID string, id uuid.UUID, in resume.StyleInput) (*resume.Resume, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*resume.Resume, error)
	List(ctx context.Context, userID string) ([]resume.Resume, error)
}

// Drafter is the subset of *aidraft.Drafter used by the routes.
type Drafter interface {
	GenerateSummary(ctx context.Context, userID string, in aidraft.SummaryInput) (string, error)
	GenerateWorkExperience(ctx context.Context, userID string, in aidraft.WorkExperienceInput) (*aidraft.WorkExperience, error)
}

// RouterOptions configures the editor module. Drafter is optional; without it
// the AI routes are not mounted.
type RouterOptions struct {
	Resumes Resumes
	Drafter Drafter
	Logger  *slog.Logger

	// AILimiter, when set, wraps the AI routes.
	AILimiter func(http.Handler) http.Handler
}

// Router mounts the editor endpoints. It expects jwt.Middleware and
// subscription.Middleware upstream, in that order.
func Router(opts RouterOptions) chi.Router {
	if opts.Resumes == nil {
		panic("editor: Resumes is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	h := &handlers{resumes: opts.Resumes, drafter: opts.Drafter}
	onError := apierr.ErrorHandler(opts.Logger.With(logger.Component("editor")))

	r := chi.NewRouter()
	r.Get("/entitlements", handler.Wrap(h.entitlements,
		handler.WithErrorHandler[handler.Context, struct{}](onError)))

	r.Group(func(r chi.Router) {
		r.Use(jwt.RequireAuth(jwt.WithErrorHandler(apierr.Unauthorized)))

		r.Get("/resumes", handler.Wrap(h.listResumes,
			handler.WithErrorHandler[handler.Context, struct{}](onError)))
		r.Post("/resumes", handler.Wrap(h.createResume,
			handler.WithBinders[handler.Context, resume.CreateInput](binder.BindJSON()),
			handler.WithErrorHandler[handler.Context, resume.CreateInput](onError)))
		r.Get("/resumes/{id}", handler.Wrap(h.getResume,
			handler.WithBinders[handler.Context, resumeRef](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, resumeRef](onError)))
		r.Patch("/resumes/{id}/style", handler.Wrap(h.updateStyle,
			handler.WithBinders[handler.Context, styleRequest](binder.Path(chi.URLParam), binder.BindJSON()),
			handler.WithErrorHandler[handler.Context, styleRequest](onError)))

		if h.drafter != nil {
			r := r
			if opts.AILimiter != nil {
				r = r.With(opts.AILimiter)
			}
			r.Post("/ai/summary", handler.Wrap(h.generateSummary,
				handler.WithBinders[handler.Context, aidraft.SummaryInput](binder.BindJSON()),
				handler.WithErrorHandler[handler.Context, aidraft.SummaryInput](onError)))
			r.Post("/ai/work-experience", handler.Wrap(h.generateWorkExperience,
				handler.WithBinders[handler.Context, aidraft.WorkExperienceInput](binder.BindJSON()),
				handler.WithErrorHandler[handler.Context, aidraft.WorkExperienceInput](onError)))
		}
	})

	return r
}
