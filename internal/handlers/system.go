package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const welcomeText = "Welcome to the Film API"

// @Summary      Welcome
// @Tags         system
// @Produce      plain
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) welcome(c *gin.Context) {
	c.String(http.StatusOK, welcomeText)
}

// @Summary      Status
// @Description  Liveness plus a database ping.
// @Tags         system
// @Produce      json
// @Success      200  {object}  service.Status
// @Router       /status [get]
func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Status.Status(c.Request.Context()))
}
