package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/shilldao/herald/service"
)

// SetupRouter wires the full REST contract. Auth endpoints are public;
// everything else sits behind bearer validation, with the moderation group
// additionally requiring the moderator role.
func SetupRouter(auth *service.AuthService, data *Dataset, log *slog.Logger) *gin.Engine {
	router := gin.Default()
	handlers := NewHandlers(auth, data, log)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/nonce", handlers.Nonce)
		authGroup.POST("/verify", handlers.Verify)
		authGroup.POST("/refresh", handlers.Refresh)
		authGroup.POST("/logout", handlers.Logout)
	}

	protected := api.Group("")
	protected.Use(AuthMiddleware(auth))
	{
		protected.GET("/campaigns", handlers.Campaigns)
		protected.GET("/my-campaigns", handlers.MyCampaigns)
		protected.POST("/campaigns/create", handlers.CreateCampaign)
		protected.POST("/campaigns/create-verified", handlers.CreateVerifiedCampaign)
		protected.GET("/campaigns-overview", handlers.CampaignsOverview)
		protected.GET("/campaigns/:id/tasks", handlers.CampaignTasks)

		protected.GET("/tasks", handlers.Tasks)
		protected.POST("/tasks/create", handlers.CreateTask)
		protected.POST("/task/submit", handlers.SubmitTask)

		protected.GET("/dao-view", handlers.DaoView)
		protected.GET("/favorite-daos", handlers.FavoriteDaos)
		protected.GET("/most-active-daos", handlers.MostActiveDaos)
		protected.GET("/my-daos", handlers.MyDaos)
		protected.POST("/register-dao", handlers.RegisterDao)
		protected.PATCH("/edit-dao/:id", handlers.EditDao)
		protected.DELETE("/delete-dao/:id", handlers.DeleteDao)

		protected.GET("/submissions-history", handlers.SubmissionsHistory)
		protected.GET("/submissions-overview", handlers.SubmissionsOverview)

		protected.GET("/statistics/overview", handlers.StatsOverview)
		protected.GET("/statistics/campaigns-graph", handlers.CampaignsGraph)
		protected.GET("/statistics/rewards-graph", handlers.RewardsGraph)
		protected.GET("/statistics/tier-graph", handlers.TierGraph)
		protected.GET("/top-shillers", handlers.TopShillers)
		protected.GET("/top-shillers-extended", handlers.TopShillersExtended)

		protected.GET("/user/me", handlers.Me)
		protected.POST("/username/update", handlers.UpdateUsername)
		protected.POST("/user-image/update", handlers.UpdateUserImage)
		protected.POST("/user-image/remove", handlers.RemoveUserImage)
		protected.POST("/user/favorites/daos/:id/toggle", handlers.ToggleFavoriteDao)
		protected.GET("/my-rewards", handlers.MyRewards)
	}

	moderation := protected.Group("/moderation")
	moderation.Use(ModeratorOnly())
	{
		moderation.GET("/submissions-history", handlers.ModerationHistory)
		moderation.GET("/submission/:id/grade", handlers.SubmissionDetail)
		moderation.PATCH("/submission/:id/grade", handlers.GradeSubmission)
	}

	return router
}
