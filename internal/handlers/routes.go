package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the committee API. auth guards every /api route.
func RegisterRoutes(r *gin.Engine, committee *CommitteeHandler, archive *ArchiveHandler, health *HealthHandler, auth gin.HandlerFunc) {
	if health != nil {
		r.GET("/health/live", health.Live)
		r.GET("/health/ready", health.Ready)
	}

	api := r.Group("/api/committee")
	api.Use(auth)
	{
		api.GET("/current", committee.GetCurrent)
		api.POST("/members", committee.AddMember)
		api.DELETE("/members/:id", committee.RemoveMember)
		api.PUT("/members/order", committee.ReorderMembers)
		api.POST("/end-tenure", committee.EndTenure)
		api.POST("/next-number", committee.StageNextNumber)
		api.GET("/stats", committee.Stats)
		api.POST("/executives/:user_id/approve", committee.ApproveExecutive)
		api.GET("/designations", committee.ListDesignations)
		api.GET("/transitions", committee.Transitions)

		api.GET("/previous", archive.ListPrevious)
		api.GET("/previous/:number", archive.GetPrevious)
		api.GET("/numbers", archive.Numbers)
	}
}
