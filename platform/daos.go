package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shilldao/herald/apiclient"
	"github.com/shilldao/herald/core"
)

// DaoService covers DAO listing, registration and management endpoints.
type DaoService struct {
	api *apiclient.Client
}

func NewDaoService(api *apiclient.Client) *DaoService {
	return &DaoService{api: api}
}

// List returns one page of registered DAOs.
func (s *DaoService) List(ctx context.Context, page int) (apiclient.Page[core.Dao], error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	return apiclient.Do[apiclient.Page[core.Dao]](ctx, s.api, http.MethodGet, "dao-view", &apiclient.RequestOptions{
		Params: v,
	})
}

// Favorites returns the DAOs the user has starred.
func (s *DaoService) Favorites(ctx context.Context) ([]core.Dao, error) {
	return apiclient.Do[[]core.Dao](ctx, s.api, http.MethodGet, "favorite-daos", nil)
}

// MostActive returns DAOs ranked by recent campaign activity.
func (s *DaoService) MostActive(ctx context.Context) ([]core.Dao, error) {
	return apiclient.Do[[]core.Dao](ctx, s.api, http.MethodGet, "most-active-daos", nil)
}

// Mine returns DAOs created by the authenticated user.
func (s *DaoService) Mine(ctx context.Context) ([]core.Dao, error) {
	return apiclient.Do[[]core.Dao](ctx, s.api, http.MethodGet, "my-daos", nil)
}

func registrationFields(reg core.DaoRegistration) (map[string]string, error) {
	fields := map[string]string{
		"name":    reg.Name,
		"network": strconv.FormatInt(reg.Network, 10),
	}
	if reg.Description != "" {
		fields["description"] = reg.Description
	}
	if reg.Website != "" {
		fields["website"] = reg.Website
	}
	if len(reg.SocialLinks) > 0 {
		links, err := json.Marshal(reg.SocialLinks)
		if err != nil {
			return nil, fmt.Errorf("encode social links: %w", err)
		}
		fields["social_links"] = string(links)
	}
	return fields, nil
}

// Register creates a DAO. The logo travels as a multipart file part; pass nil
// to register without one.
func (s *DaoService) Register(ctx context.Context, reg core.DaoRegistration, image *apiclient.FilePart) (core.Dao, error) {
	fields, err := registrationFields(reg)
	if err != nil {
		return core.Dao{}, err
	}
	body := &apiclient.MultipartBody{Fields: fields}
	if image != nil {
		body.Files = append(body.Files, *image)
	}
	return apiclient.Do[core.Dao](ctx, s.api, http.MethodPost, "register-dao", &apiclient.RequestOptions{
		Multipart: body,
	})
}

// Edit updates a DAO the user owns.
func (s *DaoService) Edit(ctx context.Context, id int64, reg core.DaoRegistration, image *apiclient.FilePart) (core.Dao, error) {
	fields, err := registrationFields(reg)
	if err != nil {
		return core.Dao{}, err
	}
	body := &apiclient.MultipartBody{Fields: fields}
	if image != nil {
		body.Files = append(body.Files, *image)
	}
	return apiclient.Do[core.Dao](ctx, s.api, http.MethodPatch, fmt.Sprintf("edit-dao/%d", id), &apiclient.RequestOptions{
		Multipart: body,
	})
}

// Delete removes a DAO the user owns.
func (s *DaoService) Delete(ctx context.Context, id int64) error {
	_, err := s.api.Request(ctx, http.MethodDelete, fmt.Sprintf("delete-dao/%d", id), nil)
	return err
}
