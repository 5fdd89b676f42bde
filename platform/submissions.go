package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

// SubmissionService covers a shiller's own activity history plus the
// moderator review queue.
type SubmissionService struct {
	api *apiclient.Client
}

func NewSubmissionService(api *apiclient.Client) *SubmissionService {
	return &SubmissionService{api: api}
}

// History returns one page of the user's own submissions, newest first.
func (s *SubmissionService) History(ctx context.Context, page int) (apiclient.Page[core.Submission], error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	return apiclient.Do[apiclient.Page[core.Submission]](ctx, s.api, http.MethodGet, "submissions-history", &apiclient.RequestOptions{
		Params: v,
	})
}

// Overview returns the user's submission counters.
func (s *SubmissionService) Overview(ctx context.Context) (core.SubmissionsOverview, error) {
	return apiclient.Do[core.SubmissionsOverview](ctx, s.api, http.MethodGet, "submissions-overview", nil)
}

// ModerationParams filters the moderator queue.
type ModerationParams struct {
	Page      int
	Status    core.SubmissionStatus
	ProofType core.ProofType
}

func (p ModerationParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	if p.ProofType != "" {
		v.Set("proof_type", string(p.ProofType))
	}
	return v
}

// ModerationPage is a review-queue page with its status counters.
type ModerationPage struct {
	apiclient.Page[core.Submission]
	PendingCount  int `json:"pendingCount"`
	ApprovedCount int `json:"approvedCount"`
	RejectedCount int `json:"rejectedCount"`
}

// ModerationQueue returns one page of submissions awaiting review. The
// backend rejects callers without the moderator role.
func (s *SubmissionService) ModerationQueue(ctx context.Context, params ModerationParams) (ModerationPage, error) {
	return apiclient.Do[ModerationPage](ctx, s.api, http.MethodGet, "moderation/submissions-history", &apiclient.RequestOptions{
		Params: params.values(),
	})
}

// Detail returns one submission with its full proof for grading.
func (s *SubmissionService) Detail(ctx context.Context, id int64) (core.Submission, error) {
	return apiclient.Do[core.Submission](ctx, s.api, http.MethodGet, fmt.Sprintf("moderation/submission/%d/grade", id), nil)
}

// Grade records a moderator's verdict on a submission.
func (s *SubmissionService) Grade(ctx context.Context, id int64, grade core.Grade) (core.Submission, error) {
	return apiclient.Do[core.Submission](ctx, s.api, http.MethodPatch, fmt.Sprintf("moderation/submission/%d/grade", id), &apiclient.RequestOptions{
		Body: map[string]string{
			"status":   string(grade.Status),
			"feedback": grade.Feedback,
		},
	})
}
