// Package platform exposes typed services over the ShillDAO backend API. Each
// service is a thin wrapper around the shared request pipeline; response
// bodies arrive already normalized to camelCase keys.
package platform

import "github.com/shilldao/herald/apiclient"

// Platform bundles every endpoint service over one shared client.
type Platform struct {
	Auth        *AuthService
	Campaigns   *CampaignService
	Daos        *DaoService
	Tasks       *TaskService
	Submissions *SubmissionService
	Dashboard   *DashboardService
	Users       *UserService
}

func New(api *apiclient.Client) *Platform {
	return &Platform{
		Auth:        NewAuthService(api),
		Campaigns:   NewCampaignService(api),
		Daos:        NewDaoService(api),
		Tasks:       NewTaskService(api),
		Submissions: NewSubmissionService(api),
		Dashboard:   NewDashboardService(api),
		Users:       NewUserService(api),
	}
}
