package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/clientbook-api/internal/application/service"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clientbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/clientbook-api/pkg/pagination"
)

// ClientHandler handles client CRM requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing clients with search, tag, segment and sort filters
func (h *ClientHandler) List(c *gin.Context) {
	var q request.ListClientsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), GetBusinessID(c), &service.ListClientsInput{
		Search:  q.Search,
		Tag:     q.Tag,
		Segment: q.Segment,
		Sort:    pagination.SortParams{Field: q.Sort, Order: pagination.SortOrder(q.Order)},
		Params:  pagination.PaginationParams{Page: q.Page, PerPage: q.PerPage},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Clients retrieved successfully", result)
}

// Segments returns how many clients fall into each segment
func (h *ClientHandler) Segments(c *gin.Context) {
	counts, err := h.clientService.SegmentCounts(c.Request.Context(), GetBusinessID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Segment counts retrieved successfully", counts)
}

// Get returns a client with freshly recomputed stats
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.clientService.GetClient(c.Request.Context(), GetBusinessID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client retrieved successfully", detail)
}

// Create handles manual client entry. A duplicate is answered with 409 and
// the existing client's id.
func (h *ClientHandler) Create(c *gin.Context) {
	var req request.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.clientService.CreateClient(c.Request.Context(), GetBusinessID(c), &service.CreateClientInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Tags:   req.Tags,
		Source: enum.ClientSourceManual,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Duplicate != nil {
		response.Conflict(c, result.Duplicate.Message, result.Duplicate)
		return
	}

	response.Created(c, "Client created successfully", result.Client)
}

// Update handles editing a client's contact fields and tags
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), GetBusinessID(c), id, &service.UpdateClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Tags:  req.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client updated successfully", client)
}

// Delete soft-deletes a client
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), GetBusinessID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddTag handles adding a tag
func (h *ClientHandler) AddTag(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Tag is required")
		return
	}

	client, err := h.clientService.AddTag(c.Request.Context(), GetBusinessID(c), id, req.Tag)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tag added successfully", client)
}

// RemoveTag handles removing a tag
func (h *ClientHandler) RemoveTag(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	client, err := h.clientService.RemoveTag(c.Request.Context(), GetBusinessID(c), id, c.Param("tag"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tag removed successfully", client)
}

// AddNote handles adding a note
func (h *ClientHandler) AddNote(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Note text is required")
		return
	}

	note, err := h.clientService.AddNote(c.Request.Context(), GetBusinessID(c), id, req.Text, GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Note added successfully", note)
}

// RemoveNote handles removing a note
func (h *ClientHandler) RemoveNote(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	noteID, err := uuidParam(c, "note_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.clientService.RemoveNote(c.Request.Context(), GetBusinessID(c), id, noteID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
