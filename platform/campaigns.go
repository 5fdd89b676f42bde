package platform

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

// CampaignService covers campaign listing, creation and overview endpoints.
type CampaignService struct {
	api *apiclient.Client
}

func NewCampaignService(api *apiclient.Client) *CampaignService {
	return &CampaignService{api: api}
}

// CampaignListParams filters the paginated campaign listing. Zero values are
// omitted from the query.
type CampaignListParams struct {
	Page   int
	Status core.CampaignStatus
}

func (p CampaignListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	return v
}

// List returns one page of campaigns, newest first.
func (s *CampaignService) List(ctx context.Context, params CampaignListParams) (apiclient.Page[core.Campaign], error) {
	return apiclient.Do[apiclient.Page[core.Campaign]](ctx, s.api, http.MethodGet, "campaigns", &apiclient.RequestOptions{
		Params: params.values(),
	})
}

// Mine returns campaigns owned by the authenticated user's DAOs.
func (s *CampaignService) Mine(ctx context.Context) ([]core.Campaign, error) {
	return apiclient.Do[[]core.Campaign](ctx, s.api, http.MethodGet, "my-campaigns", nil)
}

// Create creates an unfunded campaign.
func (s *CampaignService) Create(ctx context.Context, draft core.CampaignDraft) (core.Campaign, error) {
	return apiclient.Do[core.Campaign](ctx, s.api, http.MethodPost, "campaigns/create", &apiclient.RequestOptions{
		Body: draft,
	})
}

type verifiedCampaignBody struct {
	core.CampaignDraft
	TransactionHash string `json:"transaction_hash"`
}

// CreateVerified creates a funded campaign, attaching the hash of the
// confirmed token transfer so the backend can verify the budget on chain.
func (s *CampaignService) CreateVerified(ctx context.Context, draft core.CampaignDraft, txHash string) (core.Campaign, error) {
	return apiclient.Do[core.Campaign](ctx, s.api, http.MethodPost, "campaigns/create-verified", &apiclient.RequestOptions{
		Body: verifiedCampaignBody{CampaignDraft: draft, TransactionHash: txHash},
	})
}

// Overview returns the aggregate campaign counters.
func (s *CampaignService) Overview(ctx context.Context) (core.CampaignOverview, error) {
	return apiclient.Do[core.CampaignOverview](ctx, s.api, http.MethodGet, "campaigns-overview", nil)
}
