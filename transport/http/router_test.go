package http

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shilldao/herald/adapters/events"
	"github.com/shilldao/herald/adapters/store"
	"github.com/shilldao/herald/adapters/tokenizer"
	"github.com/shilldao/herald/adapters/wallet"
	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/platform"
	"github.com/shilldao/herald/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, moderators ...string) *httptest.Server {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	pub := events.NewWatermillPublisher(
		gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	)
	auth := service.NewAuthService(
		tokenizer.NewJWTTokenizer(key),
		wallet.PersonalVerifier{},
		mem, mem, pub,
		service.WithModerators(moderators...),
	)

	srv := httptest.NewServer(SetupRouter(auth, NewDataset(), nil))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	wallet      *wallet.LocalWallet
	tokens      *store.MemoryTokenStore
	api         *apiclient.Client
	plat        *platform.Platform
	coordinator *service.SessionCoordinator
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	w, err := wallet.Generate()
	require.NoError(t, err)
	return newClientWithWallet(srv, w)
}

func newClientWithWallet(srv *httptest.Server, w *wallet.LocalWallet) *client {
	tokens := store.NewMemoryTokenStore()
	api := apiclient.New(srv.URL+"/api", tokens)
	plat := platform.New(api)
	return &client{
		wallet:      w,
		tokens:      tokens,
		api:         api,
		plat:        plat,
		coordinator: service.NewSessionCoordinator(w, plat, api, tokens),
	}
}

func (c *client) login(t *testing.T) {
	t.Helper()
	redirect, err := c.coordinator.HandleLoginAttempt(context.Background())
	require.NoError(t, err)
	require.Equal(t, service.DefaultRedirectPath, redirect)
}

func TestLoginHandshake(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)
	c.login(t)

	session := c.coordinator.Session()
	assert.True(t, session.Authenticated())
	assert.Equal(t, c.wallet.Address(), session.Address)
	assert.Equal(t, core.RoleUser, session.Role)

	me, err := c.plat.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.wallet.Address(), me.EthAddress)
	assert.Equal(t, core.TierBronze, me.Tier)
}

// A stale access token must be replaced transparently via the stored refresh
// credential, without the caller seeing the 401.
func TestStaleAccessTokenSelfHeals(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)
	c.login(t)

	c.tokens.SetAccess("stale-token", core.RoleUser)

	me, err := c.plat.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.wallet.Address(), me.EthAddress)

	access, _ := c.tokens.Access()
	assert.NotEqual(t, "stale-token", access)
}

func TestSignatureFromWrongKeyRejected(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)
	imposter, err := wallet.Generate()
	require.NoError(t, err)

	challenge, err := c.plat.Auth.Nonce(context.Background(), c.wallet.Address())
	require.NoError(t, err)
	message := challenge.SigningMessage()
	sig, err := imposter.SignMessage(context.Background(), message)
	require.NoError(t, err)

	_, err = c.plat.Auth.Verify(context.Background(), c.wallet.Address(), sig, message)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestModerationRequiresModeratorRole(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)
	c.login(t)

	_, err := c.plat.Submissions.ModerationQueue(context.Background(), platform.ModerationParams{})
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestSubmitAndGradeFlow(t *testing.T) {
	w, err := wallet.Generate()
	require.NoError(t, err)
	srv := newServer(t, w.Address())
	mod := newClientWithWallet(srv, w)
	mod.login(t)
	ctx := context.Background()

	tasks, err := mod.plat.Tasks.List(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, tasks.Results)
	task := tasks.Results[0]

	submitted, err := mod.plat.Tasks.Submit(ctx, core.SubmissionDraft{
		TaskID:    task.ID,
		Link:      "https://x.com/shiller/status/1",
		ProofType: core.ProofImage,
	}, &apiclient.FilePart{Field: "proof_image", Filename: "proof.png", Content: []byte("png")})
	require.NoError(t, err)
	assert.Equal(t, core.SubmissionPending, submitted.Status)
	assert.Equal(t, "proof.png", submitted.ProofImage)

	queue, err := mod.plat.Submissions.ModerationQueue(ctx, platform.ModerationParams{})
	require.NoError(t, err)
	require.Equal(t, 1, queue.Count)
	assert.Equal(t, 1, queue.PendingCount)

	graded, err := mod.plat.Submissions.Grade(ctx, submitted.ID, core.Grade{
		Status:   core.SubmissionApproved,
		Feedback: "solid reach",
	})
	require.NoError(t, err)
	assert.Equal(t, core.SubmissionApproved, graded.Status)
	assert.Equal(t, "solid reach", graded.Feedback)

	me, err := mod.plat.Users.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, me.Approved)

	rewards, err := mod.plat.Users.MyRewards(ctx)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.True(t, rewards[0].Amount.Equal(task.Reward))
}

func TestTasksPagination(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)
	c.login(t)
	ctx := context.Background()

	campaigns, err := c.plat.Campaigns.List(ctx, platform.CampaignListParams{})
	require.NoError(t, err)
	require.NotEmpty(t, campaigns.Results)
	campaignID := campaigns.Results[0].ID

	first, err := c.plat.Tasks.List(ctx, 1)
	require.NoError(t, err)
	seeded := first.Count

	extra := seeded + 3 - pageSize // push past one page
	require.Greater(t, extra, 0)
	for i := 0; i < 3; i++ {
		_, err := c.plat.Tasks.Create(ctx, core.TaskDraft{
			Description: "Thread about the new release",
			Type:        core.TaskSocialPost,
			Reward:      decimal.NewFromInt(5),
			Quantity:    2,
			CampaignID:  campaignID,
		})
		require.NoError(t, err)
	}

	page1, err := c.plat.Tasks.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, seeded+3, page1.Count)
	assert.Len(t, page1.Results, pageSize)
	require.True(t, page1.HasNext())

	page2, err := c.plat.Tasks.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Results, seeded+3-pageSize)
	assert.NotNil(t, page2.Previous)
	assert.Nil(t, page2.Next)
}

func TestRequestWithoutTokenUnauthorized(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)

	_, err := c.plat.Users.Me(context.Background())
	require.Error(t, err)
	var apiErr *apiclient.APIError
	// No refresh credential either, so the pipeline surfaces the missing
	// credential instead of a bare 401.
	if !errors.As(err, &apiErr) {
		assert.ErrorIs(t, err, core.ErrNoRefreshToken)
	}
}
