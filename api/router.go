// api/router.go
package api

import (
	"net/http"

	"github.com/devadigapratham/printbatch/api/handlers"
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the API routes. membership, when not nil, is mounted under /raft.
func SetupRouter(handler *handlers.Handler, membership http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger())

	// Writes must go to the leader
	router.Use(handler.RaftLeaderMiddleware())

	api := router.Group("/api/v1")
	{
		// Printer endpoints
		api.POST("/printers", handler.CreatePrinter)
		api.GET("/printers", handler.GetPrinters)

		// Print job endpoints
		api.POST("/print_jobs", handler.CreatePrintJob)
		api.GET("/print_jobs", handler.GetPrintJobs)
		api.POST("/print_jobs/:id/status", handler.UpdatePrintJobStatus)

		// Scheduling endpoints
		api.POST("/schedule", handler.Schedule)
		api.POST("/printers/:id/plan", handler.CreatePlan)
		api.GET("/printers/:id/plan", handler.GetPlan)
		api.POST("/printers/:id/plan/start", handler.StartPlan)
	}

	router.GET("/status", handler.Status)

	if membership != nil {
		router.Any("/raft/*path", gin.WrapH(http.StripPrefix("/raft", membership)))
	}

	return router
}
