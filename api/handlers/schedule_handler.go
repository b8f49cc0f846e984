package handlers

import (
	"net/http"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/devadigapratham/printbatch/scheduler"
	"github.com/gin-gonic/gin"
)

// Schedule batches the jobs in the request body without touching the queue
func (h *Handler) Schedule(c *gin.Context) {
	var req scheduler.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobs, constraints, err := req.Resolve()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	res, err := scheduler.Schedule(jobs, constraints)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// CreatePlan plans the printer's queued jobs and archives the plan
func (h *Handler) CreatePlan(c *gin.Context) {
	plan, ok := h.plan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPlan returns the printer's last archived plan
func (h *Handler) GetPlan(c *gin.Context) {
	printerID := c.Param("id")
	plan, found, err := h.Plans.Load(printerID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plan for printer " + printerID})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// StartPlan replans the printer's queue and starts its first batch
func (h *Handler) StartPlan(c *gin.Context) {
	plan, ok := h.plan(c)
	if !ok {
		return
	}
	if len(plan.Batches) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "no queued jobs for printer " + plan.PrinterID})
		return
	}

	batch := plan.Batches[0]
	cmd := &models.Command{
		Type:      models.StartBatch,
		PrinterID: plan.PrinterID,
		JobIDs:    batch.JobIDs,
	}
	if err := h.Node.Apply(cmd); err != nil {
		h.abortWithError(c, err)
		return
	}

	h.Logger.Info("batch started", "printer_id", plan.PrinterID, "jobs", len(batch.JobIDs), "time", batch.Time)
	c.JSON(http.StatusOK, batch)
}

// plan computes and archives the plan for the printer named in the path.
// It writes the error response itself and reports false on failure.
func (h *Handler) plan(c *gin.Context) (*models.Plan, bool) {
	printerID := c.Param("id")
	printer, ok := h.Node.GetFSM().GetPrinter(printerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "printer not found"})
		return nil, false
	}

	batches, err := scheduler.Plan(h.Node.GetFSM().QueuedJobs(printerID), printer.Constraints())
	if err != nil {
		h.abortWithError(c, err)
		return nil, false
	}

	plan := models.NewPlan(printerID, batches, h.now())
	if err := h.Plans.Save(plan); err != nil {
		h.abortWithError(c, err)
		return nil, false
	}
	h.Logger.Debug("planned queue", "printer_id", printerID, "batches", len(batches), "total_time", plan.TotalTime)
	return plan, true
}
