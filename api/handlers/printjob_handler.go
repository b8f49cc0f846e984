package handlers

import (
	"net/http"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreatePrintJob queues a new print job
func (h *Handler) CreatePrintJob(c *gin.Context) {
	var printJob models.PrintJob
	if err := c.ShouldBindJSON(&printJob); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Generate an ID if not provided
	if printJob.ID == "" {
		printJob.ID = uuid.New().String()
	}
	if err := printJob.Job().Validate(0); err != nil {
		h.abortWithError(c, err)
		return
	}

	// Status and sequence are owned by the FSM
	printJob.Status = models.StatusQueued
	printJob.Seq = 0

	cmd := &models.Command{
		Type:     models.AddPrintJob,
		PrintJob: &printJob,
	}
	if err := h.Node.Apply(cmd); err != nil {
		h.abortWithError(c, err)
		return
	}

	job, _ := h.Node.GetFSM().GetPrintJob(printJob.ID)
	c.JSON(http.StatusCreated, job)
}

// GetPrintJobs returns print jobs, optionally filtered by status and printer
func (h *Handler) GetPrintJobs(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.IsValidPrintJobStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	printJobs := h.Node.GetFSM().GetPrintJobs(status, c.Query("printer_id"))
	c.JSON(http.StatusOK, printJobs)
}

// UpdatePrintJobStatus updates the status of a print job
func (h *Handler) UpdatePrintJobStatus(c *gin.Context) {
	jobID := c.Param("id")
	newStatus := c.Query("status")

	if !models.IsValidPrintJobStatus(newStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	cmd := &models.Command{
		Type:      models.UpdatePrintJob,
		JobID:     jobID,
		NewStatus: newStatus,
	}
	if err := h.Node.Apply(cmd); err != nil {
		h.abortWithError(c, err)
		return
	}

	job, _ := h.Node.GetFSM().GetPrintJob(jobID)
	c.JSON(http.StatusOK, job)
}
