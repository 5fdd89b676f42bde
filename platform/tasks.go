package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

// TaskService covers task listing, creation and proof submission.
type TaskService struct {
	api *apiclient.Client
}

func NewTaskService(api *apiclient.Client) *TaskService {
	return &TaskService{api: api}
}

// TaskPage is a task listing page with its aggregate footer.
type TaskPage struct {
	apiclient.Page[core.Task]
	TotalRewards decimal.Decimal `json:"totalRewards"`
	OpenTasks    int             `json:"openTasks"`
}

// List returns one page of open tasks across all campaigns.
func (s *TaskService) List(ctx context.Context, page int) (TaskPage, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	return apiclient.Do[TaskPage](ctx, s.api, http.MethodGet, "tasks", &apiclient.RequestOptions{
		Params: v,
	})
}

// ByCampaign returns all tasks under one campaign.
func (s *TaskService) ByCampaign(ctx context.Context, campaignID int64) ([]core.Task, error) {
	return apiclient.Do[[]core.Task](ctx, s.api, http.MethodGet, fmt.Sprintf("campaigns/%d/tasks", campaignID), nil)
}

// Create adds a task to a campaign the user's DAO owns.
func (s *TaskService) Create(ctx context.Context, draft core.TaskDraft) (core.Task, error) {
	return apiclient.Do[core.Task](ctx, s.api, http.MethodPost, "tasks/create", &apiclient.RequestOptions{
		Body: draft,
	})
}

// Submit sends proof of completed work. Image and video proofs travel as
// multipart file parts; text proofs ride in the form fields.
func (s *TaskService) Submit(ctx context.Context, draft core.SubmissionDraft, proof *apiclient.FilePart) (core.Submission, error) {
	fields := map[string]string{
		"task_id":    strconv.FormatInt(draft.TaskID, 10),
		"link":       draft.Link,
		"proof_type": string(draft.ProofType),
	}
	if draft.ProofText != "" {
		fields["proof_text"] = draft.ProofText
	}
	body := &apiclient.MultipartBody{Fields: fields}
	if proof != nil {
		body.Files = append(body.Files, *proof)
	}
	return apiclient.Do[core.Submission](ctx, s.api, http.MethodPost, "task/submit", &apiclient.RequestOptions{
		Multipart: body,
	})
}
