package editor

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/resumekit/handler"
	"github.com/dmitrymomot/resumekit/pkg/jwt"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
	"github.com/dmitrymomot/resumekit/svc/aidraft"
	"github.com/dmitrymomot/resumekit/svc/resume"
)

type handlers struct {
	resumes Resumes
	drafter Drafter
}

type resumeRef struct {
	ID string `path:"id"`
}

func (r resumeRef) uuid() (uuid.UUID, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return uuid.Nil, resume.ErrNotFound
	}
	return id, nil
}

type styleRequest struct {
	ID string `path:"id" json:"-"`
	resume.StyleInput
}

// entitlements renders the snapshot resolved for this request. It is what the
// page seeds its tier cache with.
func (h *handlers) entitlements(ctx handler.Context, _ struct{}) handler.Response {
	e, ok := subscription.EntitlementsFromContext(ctx)
	if !ok {
		e = subscription.EntitlementsFor(subscription.TierFree)
	}
	return handler.JSON(e)
}

func (h *handlers) listResumes(ctx handler.Context, _ struct{}) handler.Response {
	userID, _ := jwt.UserID(ctx)
	list, err := h.resumes.List(ctx, userID)
	if err != nil {
		return handler.Fail(err)
	}
	if list == nil {
		list = []resume.Resume{}
	}
	return handler.JSON(list)
}

func (h *handlers) createResume(ctx handler.Context, in resume.CreateInput) handler.Response {
	userID, _ := jwt.UserID(ctx)
	r, err := h.resumes.Create(ctx, userID, in)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(r, handler.WithJSONStatus(http.StatusCreated))
}

func (h *handlers) getResume(ctx handler.Context, ref resumeRef) handler.Response {
	id, err := ref.uuid()
	if err != nil {
		return handler.Fail(err)
	}
	userID, _ := jwt.UserID(ctx)
	r, err := h.resumes.Get(ctx, userID, id)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(r)
}

func (h *handlers) updateStyle(ctx handler.Context, req styleRequest) handler.Response {
	id, err := resumeRef{ID: req.ID}.uuid()
	if err != nil {
		return handler.Fail(err)
	}
	userID, _ := jwt.UserID(ctx)
	r, err := h.resumes.UpdateStyle(ctx, userID, id, req.StyleInput)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(r)
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func (h *handlers) generateSummary(ctx handler.Context, in aidraft.SummaryInput) handler.Response {
	userID, _ := jwt.UserID(ctx)
	summary, err := h.drafter.GenerateSummary(ctx, userID, in)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(summaryResponse{Summary: summary})
}

func (h *handlers) generateWorkExperience(ctx handler.Context, in aidraft.WorkExperienceInput) handler.Response {
	userID, _ := jwt.UserID(ctx)
	exp, err := h.drafter.GenerateWorkExperience(ctx, userID, in)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(exp)
}
