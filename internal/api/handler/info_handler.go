package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	appName    = "Support Dashboard"
	apiVersion = "1.0"
)

// InfoHandler serves the public, unauthenticated descriptive endpoints.
// Nothing here may reveal the signing secret.
type InfoHandler struct {
	algorithm     string
	tokenLifetime time.Duration
}

func NewInfoHandler(algorithm string, tokenLifetime time.Duration) *InfoHandler {
	return &InfoHandler{algorithm: algorithm, tokenLifetime: tokenLifetime}
}

// Root handles GET /.
//
// @Summary  Welcome
// @Tags     info
// @Produce  json
// @Success  200  {object}  messageResponse
// @Router   / [get]
func (h *InfoHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Welcome to Support Dashboard API"})
}

type infoResponse struct {
	AppName            string `json:"app_name"`
	Algorithm          string `json:"algorithm"`
	TokenExpireMinutes int    `json:"token_expire_minutes"`
	Status             string `json:"status"`
}

// Info handles GET /info.
//
// @Summary  Public token settings
// @Tags     info
// @Produce  json
// @Success  200  {object}  infoResponse
// @Router   /info [get]
func (h *InfoHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, infoResponse{
		AppName:            appName,
		Algorithm:          h.algorithm,
		TokenExpireMinutes: int(h.tokenLifetime / time.Minute),
		Status:             "running",
	})
}

type statusResponse struct {
	API     string `json:"api"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// Status handles GET /api/status.
//
// @Summary  API status
// @Tags     info
// @Produce  json
// @Success  200  {object}  statusResponse
// @Router   /api/status [get]
func (h *InfoHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{API: appName + " API", Version: apiVersion, Status: "active"})
}
