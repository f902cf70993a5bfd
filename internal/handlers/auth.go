package handlers

import (
	"net/http"

	"film_api/internal/models"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for registration and login.
type authCredentials struct {
	Username string `json:"username" binding:"required" example:"ana"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

type registerResponse struct {
	ID       int64  `json:"id" example:"1"`
	Username string `json:"username" example:"ana"`
}

type loginResponse struct {
	Message string `json:"message" example:"login successful"`
	Token   string `json:"token"`
}

// register builds the registration handler for role. Open for "user"; the
// admin variant sits behind operatorGate.
//
// @Summary      Register
// @Description  Creates an account with role "user" (/auth/register) or "admin" (/auth/register-admin, admin token or X-Bootstrap-Secret).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      authCredentials  true  "credentials"
// @Success      201    {object}  registerResponse
// @Failure      400    {object}  errorBody
// @Failure      401    {object}  errorBody
// @Failure      403    {object}  errorBody
// @Failure      409    {object}  errorBody
// @Router       /auth/register [post]
// @Router       /auth/register-admin [post]
func (h *Handler) register(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input authCredentials
		if !h.bindJSONOrBadRequest(c, &input) {
			return
		}

		user, err := h.services.Register(c.Request.Context(), input.Username, input.Password, role)
		if err != nil {
			h.log.Infow("auth_register_failed", "username", input.Username, "role", role, "err", err)
			fail(c, "auth_register_failed", err, "role", role)
			return
		}

		c.JSON(http.StatusCreated, registerResponse{ID: user.ID, Username: user.Username})
	}
}

// @Summary      Login
// @Description  Exchanges credentials for a bearer token valid for one hour.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      authCredentials  true  "credentials"
// @Success      200    {object}  loginResponse
// @Failure      400    {object}  errorBody
// @Failure      401    {object}  errorBody
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input authCredentials
	if !h.bindJSONOrBadRequest(c, &input) {
		return
	}

	token, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.log.Infow("auth_login_failed", "username", input.Username, "err", err)
		fail(c, "auth_login_failed", err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Message: "login successful", Token: token})
}
