// Package handler exposes the leads module over HTTP.
package handler

import (
	"fmt"
	"net/http"

	"leadbridge/internal/events"
	"leadbridge/internal/leads/service"
	"leadbridge/internal/leads/transport"
	"leadbridge/platform/httpkit"
	"leadbridge/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
)

// Handler handles leads HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
	bus     events.Bus
}

// NewHandler creates a new leads handler.
func NewHandler(svc *service.Service, val *validator.Validator, bus events.Bus) *Handler {
	return &Handler{service: svc, val: val, bus: bus}
}

// HandleIngest processes an inbound lead submission.
// POST /api/v1/leads
func (h *Handler) HandleIngest(c *gin.Context) {
	var lead transport.InboundLead
	if !h.bindAndValidate(c, &lead, "create lead") {
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), lead)
	if err != nil {
		h.reportFailure(c, "create lead", err)
		httpkit.HandleError(c, err)
		return
	}

	if result.Outcome == service.OutcomeAlreadyExists {
		// Never an error: the CRM already knows this lead.
		httpkit.OK(c, gin.H{"message": "lead already exists, inquiry recorded", "notePosted": result.NotePosted})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "lead successfully created",
		"contact": result.Contact,
	})
}

// HandleUpdate applies a sparse patch to an existing contact.
// PUT /api/v1/leads/:leadId
func (h *Handler) HandleUpdate(c *gin.Context) {
	leadID := c.Param("leadId")

	var lead transport.InboundLead
	if !h.bindAndValidate(c, &lead, "update lead") {
		return
	}

	result, err := h.service.Update(c.Request.Context(), lead, leadID)
	if err != nil {
		h.reportFailure(c, "update lead", err)
		httpkit.HandleError(c, err)
		return
	}

	if !result.Updated {
		httpkit.OK(c, gin.H{"message": "lead was not updated"})
		return
	}

	httpkit.OK(c, gin.H{
		"message": "lead successfully updated",
		"contact": result.Contact,
	})
}

// HandleLookupContact finds a contact by email.
// POST /api/v1/leads/lookup
func (h *Handler) HandleLookupContact(c *gin.Context) {
	var req transport.LookupRequest
	if !h.bindAndValidate(c, &req, "lookup lead") {
		return
	}

	contact, err := h.service.LookupContact(c.Request.Context(), req.Email)
	if err != nil {
		h.reportFailure(c, "lookup lead", err)
		httpkit.HandleError(c, err)
		return
	}
	if contact == nil {
		httpkit.OK(c, gin.H{"message": fmt.Sprintf("there is no contact with email = %s", req.Email)})
		return
	}

	httpkit.OK(c, gin.H{"lead": contact})
}

// HandleLookupUser finds a team member by email.
// POST /api/v1/users/lookup
func (h *Handler) HandleLookupUser(c *gin.Context) {
	var req transport.UserLookupRequest
	if !h.bindAndValidate(c, &req, "lookup user") {
		return
	}

	member, err := h.service.LookupUser(c.Request.Context(), req.Email)
	if err != nil {
		h.reportFailure(c, "lookup user", err)
		httpkit.HandleError(c, err)
		return
	}
	if member == nil {
		httpkit.OK(c, gin.H{"message": fmt.Sprintf("there is no user with email = %s", req.Email)})
		return
	}

	httpkit.OK(c, gin.H{"user": member})
}

// HandleAddTags merge-adds tags to a contact.
// PATCH /api/v1/leads/:leadId/tags
func (h *Handler) HandleAddTags(c *gin.Context) {
	leadID := c.Param("leadId")

	var req transport.TagsRequest
	if !h.bindAndValidate(c, &req, "add tags") {
		return
	}

	contact, err := h.service.AddTags(c.Request.Context(), leadID, req.Tags)
	if err != nil {
		h.reportFailure(c, "add tags", err)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"data": contact})
}

// HandleAddNote attaches a property-inquiry note to a contact.
// POST /api/v1/leads/:leadId/notes
func (h *Handler) HandleAddNote(c *gin.Context) {
	leadID := c.Param("leadId")

	var req transport.NoteRequest
	if !h.bindAndValidate(c, &req, "add note") {
		return
	}

	if err := h.service.AddNote(c.Request.Context(), leadID, req); err != nil {
		h.reportFailure(c, "add note", err)
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "note added"})
}

// HandleAddTask creates a task on a contact.
// POST /api/v1/leads/:leadId/tasks
func (h *Handler) HandleAddTask(c *gin.Context) {
	leadID := c.Param("leadId")

	var req transport.TaskRequest
	if !h.bindAndValidate(c, &req, "add task") {
		return
	}

	result, err := h.service.AddTask(c.Request.Context(), leadID, req)
	if err != nil {
		h.reportFailure(c, "add task", err)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"tasks": result})
}

// HandleAddFollowers forwards a follower addition through the relay.
// POST /api/v1/leads/:leadId/followers
func (h *Handler) HandleAddFollowers(c *gin.Context) {
	leadID := c.Param("leadId")

	var req transport.FollowersRequest
	if !h.bindAndValidate(c, &req, "add followers") {
		return
	}

	result, err := h.service.AddFollowers(c.Request.Context(), leadID, req.Followers)
	if err != nil {
		h.reportFailure(c, "add followers", err)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"data": result})
}

// HandleDelete removes a contact.
// DELETE /api/v1/leads/:leadId
func (h *Handler) HandleDelete(c *gin.Context) {
	leadID := c.Param("leadId")

	if err := h.service.Delete(c.Request.Context(), leadID); err != nil {
		h.reportFailure(c, "delete lead", err)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"message": "successfully deleted"})
}

func (h *Handler) bindAndValidate(c *gin.Context, target interface{}, operation string) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		h.reportFailure(c, operation, err)
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(target); err != nil {
		h.reportFailure(c, operation, err)
		httpkit.Error(c, http.StatusBadRequest, errValidation, validator.Fields(err))
		return false
	}
	return true
}

// reportFailure publishes an operational failure so the notification module
// can forward it to the troubleshooting channel.
func (h *Handler) reportFailure(c *gin.Context, operation string, err error) {
	h.bus.Publish(c.Request.Context(), events.OperationFailed{
		BaseEvent: events.NewBaseEvent(),
		Operation: operation,
		RequestID: c.GetString(httpkit.ContextRequestIDKey),
		Reason:    err.Error(),
	})
}
