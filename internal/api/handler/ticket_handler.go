package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry ticket creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// TicketHandler handles HTTP requests for ticket operations.
type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// Create handles POST /api/tickets.
//
// @Summary      Open a ticket
// @Description  The owner is the caller. Replaying an Idempotency-Key returns the original ticket with 200.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createTicketRequest  true   "Ticket details"
// @Success      201              {object}  ticketResponse
// @Success      200              {object}  ticketResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      401              {object}  ErrorResponse
// @Failure      409              {object}  ErrorResponse
// @Failure      422              {object}  ErrorResponse
// @Router       /api/tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), p, ports.CreateTicketInput{
		Title:          req.Title,
		Description:    req.Description,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		return err
	}

	if res.Replayed {
		metrics.TicketsCreatedTotal.WithLabelValues("replayed").Inc()
		return c.JSON(http.StatusOK, toTicketResponse(res.Ticket))
	}
	metrics.TicketsCreatedTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, toTicketResponse(res.Ticket))
}

// Get handles GET /api/tickets/:id.
//
// @Summary      Get a ticket
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Ticket ID"
// @Success      200  {object}  ticketResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.service.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// ListMine handles GET /api/my-tickets.
//
// @Summary      Tickets owned by the caller
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ticketListResponse
// @Router       /api/my-tickets [get]
func (h *TicketHandler) ListMine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListMine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticketListResponse{Tickets: toTicketResponses(tickets)})
}

// List handles GET /api/tickets (operators and managers).
//
// @Summary      List all tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "open, in_progress or closed"
// @Param        priority   query     string  false  "low, medium, high or urgent"
// @Param        page       query     int     false  "Page number (from 1)"
// @Param        page_size  query     int     false  "Items per page (max 100)"
// @Success      200        {object}  ticketListResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      403        {object}  ErrorResponse
// @Router       /api/tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	size, err := queryInt(c, "page_size")
	if err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), p, ports.ListTicketsInput{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return err
	}
	pg := toPaginationResponse(res.Pagination)
	return c.JSON(http.StatusOK, ticketListResponse{Tickets: toTicketResponses(res.Tickets), Pagination: &pg})
}

// Update handles PUT /api/tickets/:id.
//
// @Summary      Update a ticket
// @Description  Owners may edit title and description. Status, priority and other users' tickets need operator or manager.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Ticket ID"
// @Param        body  body      updateTicketRequest  true  "Fields to change"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/tickets/{id} [put]
func (h *TicketHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	t, err := h.service.Update(c.Request().Context(), p, id, ports.UpdateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Delete handles DELETE /api/tickets/:id.
//
// @Summary      Delete a ticket
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Ticket ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tickets/{id} [delete]
func (h *TicketHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("Ticket %d deleted successfully", id)})
}
