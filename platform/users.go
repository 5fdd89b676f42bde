package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

// UserService covers the authenticated user's own profile and rewards.
type UserService struct {
	api *apiclient.Client
}

func NewUserService(api *apiclient.Client) *UserService {
	return &UserService{api: api}
}

// Me returns the profile bound to the current token.
func (s *UserService) Me(ctx context.Context) (core.User, error) {
	return apiclient.Do[core.User](ctx, s.api, http.MethodGet, "user/me", nil)
}

// UpdateUsername sets the display name shown on leaderboards.
func (s *UserService) UpdateUsername(ctx context.Context, username string) (core.User, error) {
	return apiclient.Do[core.User](ctx, s.api, http.MethodPost, "username/update", &apiclient.RequestOptions{
		Body: map[string]string{"username": username},
	})
}

// UpdateImage replaces the profile picture.
func (s *UserService) UpdateImage(ctx context.Context, image apiclient.FilePart) (core.User, error) {
	return apiclient.Do[core.User](ctx, s.api, http.MethodPost, "user-image/update", &apiclient.RequestOptions{
		Multipart: &apiclient.MultipartBody{Files: []apiclient.FilePart{image}},
	})
}

// RemoveImage clears the profile picture.
func (s *UserService) RemoveImage(ctx context.Context) (core.User, error) {
	return apiclient.Do[core.User](ctx, s.api, http.MethodPost, "user-image/remove", nil)
}

// ToggleFavoriteDao stars or unstars a DAO and reports the new state.
func (s *UserService) ToggleFavoriteDao(ctx context.Context, daoID int64) (bool, error) {
	type toggleResponse struct {
		IsFavorited bool `json:"isFavorited"`
	}
	resp, err := apiclient.Do[toggleResponse](ctx, s.api, http.MethodPost, fmt.Sprintf("user/favorites/daos/%d/toggle", daoID), nil)
	if err != nil {
		return false, err
	}
	return resp.IsFavorited, nil
}

// MyRewards returns the user's payout history.
func (s *UserService) MyRewards(ctx context.Context) ([]core.Reward, error) {
	return apiclient.Do[[]core.Reward](ctx, s.api, http.MethodGet, "my-rewards", nil)
}
