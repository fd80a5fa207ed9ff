package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/domain"
	"github.com/meminc/powsysmon/internal/http/middleware"
	"github.com/meminc/powsysmon/internal/service"
)

// TopologyHandler serves the connection graph endpoints.
type TopologyHandler struct {
	Topology *service.TopologyService
}

// NewTopologyHandler creates the handler set.
func NewTopologyHandler(topology *service.TopologyService) *TopologyHandler {
	return &TopologyHandler{Topology: topology}
}

// ListConnections returns the active topology links.
func (h *TopologyHandler) ListConnections(c *gin.Context) {
	conns, err := h.Topology.ListConnections(c.Request.Context())
	if err != nil {
		abortWith(c, err)
		return
	}
	respond(c, http.StatusOK, conns, "")
}

// CreateConnection links two grid elements.
func (h *TopologyHandler) CreateConnection(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		abortWith(c, apierr.Authentication("Authentication required"))
		return
	}

	var req struct {
		FromElementID int64  `json:"from_element_id" binding:"required"`
		ToElementID   int64  `json:"to_element_id" binding:"required"`
		Kind          string `json:"kind" binding:"required,oneof=line transformer switch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, bindError(err))
		return
	}

	created, err := h.Topology.Connect(c.Request.Context(), actor, domain.NetworkConnection{
		FromElementID: req.FromElementID,
		ToElementID:   req.ToElementID,
		Kind:          req.Kind,
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	respond(c, http.StatusCreated, created, "Connection created successfully")
}

// DeleteConnection soft-marks the link as disconnected.
func (h *TopologyHandler) DeleteConnection(c *gin.Context) {
	actor, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		abortWith(c, apierr.Authentication("Authentication required"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		abortWith(c, err)
		return
	}

	if err := h.Topology.Disconnect(c.Request.Context(), actor, id); err != nil {
		abortWith(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"id":      id,
		"message": "Connection removed successfully",
	}, "")
}
