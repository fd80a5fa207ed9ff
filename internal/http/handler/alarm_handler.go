package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/http/middleware"
	"github.com/meminc/powsysmon/internal/service"
)

// AlarmHandler serves alarm acknowledgement.
type AlarmHandler struct {
	Alarms *service.AlarmService
}

// NewAlarmHandler creates the handler set.
func NewAlarmHandler(alarms *service.AlarmService) *AlarmHandler {
	return &AlarmHandler{Alarms: alarms}
}

// Acknowledge marks an alarm as seen by the acting operator.
func (h *AlarmHandler) Acknowledge(c *gin.Context) {
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

	if err := h.Alarms.Acknowledge(c.Request.Context(), actor, id); err != nil {
		abortWith(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "Alarm acknowledged")
}
