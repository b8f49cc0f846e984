package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/devadigapratham/printbatch/raft"
	"github.com/devadigapratham/printbatch/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	hraft "github.com/hashicorp/raft"
)

// Cluster is the replicated state the handlers read from and write to.
// *raft.Node implements it.
type Cluster interface {
	Apply(cmd *models.Command) error
	GetFSM() *raft.FSM
	Leader() bool
	LeaderAddress() string
	State() hraft.RaftState
}

// PlanArchive stores the last plan computed for each printer.
// *planstore.Store implements it.
type PlanArchive interface {
	Save(plan *models.Plan) error
	Load(printerID string) (*models.Plan, bool, error)
}

// Handler represents the API handlers
type Handler struct {
	Node   Cluster
	Plans  PlanArchive
	Logger hclog.Logger

	now func() time.Time
}

// NewHandler creates a new Handler
func NewHandler(node Cluster, plans PlanArchive, logger hclog.Logger) *Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Handler{
		Node:   node,
		Plans:  plans,
		Logger: logger,
		now:    time.Now,
	}
}

// readOnlyPaths are POST endpoints that do not write to the Raft log
var readOnlyPaths = map[string]bool{
	"/api/v1/schedule": true,
}

// RaftLeaderMiddleware rejects writes on followers and points the client at the leader
func (h *Handler) RaftLeaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to write operations
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead && !readOnlyPaths[c.FullPath()] {
			if !h.Node.Leader() {
				c.JSON(http.StatusConflict, gin.H{
					"error":  "not the leader",
					"leader": h.Node.LeaderAddress(),
				})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// Status reports this node's view of the cluster
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"is_leader":   h.Node.Leader(),
		"leader_addr": h.Node.LeaderAddress(),
		"state":       h.Node.State().String(),
	})
}

// abortWithError maps domain errors to HTTP status codes
func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, scheduler.ErrInvalidJob),
		errors.Is(err, scheduler.ErrInvalidConstraints),
		errors.Is(err, scheduler.ErrMalformedRecord),
		errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusBadRequest
	case errors.Is(err, raft.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, raft.ErrExists), errors.Is(err, raft.ErrPrinterBusy):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// RequestLogger logs each request through the handler's logger
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.Logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
