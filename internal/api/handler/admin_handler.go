package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/ports"
)

// SystemInfo is the static runtime description shown on the admin system page.
type SystemInfo struct {
	Environment   string
	StoreDriver   string
	Algorithm     string
	TokenLifetime time.Duration
	HashWorkers   int
	StartedAt     time.Time
}

type systemResponse struct {
	Environment        string  `json:"environment"`
	StoreDriver        string  `json:"store_driver"`
	Algorithm          string  `json:"algorithm"`
	TokenExpireMinutes int     `json:"token_expire_minutes"`
	HashWorkers        int     `json:"hash_workers"`
	GoVersion          string  `json:"go_version"`
	Goroutines         int     `json:"goroutines"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
}

// AdminHandler serves the admin-only endpoints. The router guards every
// route with RequireAdmin and the service checks again.
type AdminHandler struct {
	admin ports.AdminService
	info  SystemInfo
	now   func() time.Time
}

func NewAdminHandler(admin ports.AdminService, info SystemInfo, now func() time.Time) *AdminHandler {
	if now == nil {
		now = time.Now
	}
	return &AdminHandler{admin: admin, info: info, now: now}
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number (from 1)"
// @Param        page_size  query     int  false  "Items per page (max 100)"
// @Success      200        {object}  userListResponse
// @Failure      403        {object}  ErrorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
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
	res, err := h.admin.ListUsers(c.Request().Context(), p, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{
		Users:      toUserResponses(res.Users),
		Pagination: toPaginationResponse(res.Pagination),
	})
}

// ChangeRole handles PATCH /api/admin/users/:id/role.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User ID"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  roleChangedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/admin/users/{id}/role [patch]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.admin.ChangeRole(c.Request().Context(), p, id, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleChangedResponse{
		Message: fmt.Sprintf("Role updated to %s", user.Role),
		User:    toUserResponse(user),
	})
}

// Monitoring handles GET /api/admin/monitoring.
//
// @Summary      Live user and ticket counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  monitoringResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/admin/monitoring [get]
func (h *AdminHandler) Monitoring(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	stats, err := h.admin.Monitoring(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, monitoringResponse{
		TotalUsers:        stats.TotalUsers,
		OpenTickets:       stats.OpenTickets,
		InProgressTickets: stats.InProgressTickets,
		ClosedTickets:     stats.ClosedTickets,
		ActiveTickets:     stats.ActiveTickets,
	})
}

// System handles GET /api/admin/system.
//
// @Summary      Runtime information
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  systemResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/admin/system [get]
func (h *AdminHandler) System(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return err
	}
	uptime := 0.0
	if !h.info.StartedAt.IsZero() {
		uptime = h.now().Sub(h.info.StartedAt).Seconds()
	}
	return c.JSON(http.StatusOK, systemResponse{
		Environment:        h.info.Environment,
		StoreDriver:        h.info.StoreDriver,
		Algorithm:          h.info.Algorithm,
		TokenExpireMinutes: int(h.info.TokenLifetime / time.Minute),
		HashWorkers:        h.info.HashWorkers,
		GoVersion:          runtime.Version(),
		Goroutines:         runtime.NumGoroutine(),
		UptimeSeconds:      uptime,
	})
}
