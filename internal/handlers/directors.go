package handlers

import (
	"net/http"

	"film_api/internal/models"

	"github.com/gin-gonic/gin"
)

type directorRequest struct {
	Name      *string `json:"name" binding:"required" example:"Denis Villeneuve"`
	BirthYear *int    `json:"birthYear" binding:"required" example:"1967"`
}

func (r directorRequest) input() models.DirectorInput {
	return models.DirectorInput{Name: *r.Name, BirthYear: *r.BirthYear}
}

// @Summary      List directors
// @Tags         directors
// @Produce      json
// @Success      200  {array}   models.Director
// @Failure      500  {object}  errorBody
// @Router       /directors [get]
func (h *Handler) listDirectors(c *gin.Context) {
	directors, err := h.services.Directors.List(c.Request.Context())
	if err != nil {
		fail(c, "director_list_failed", err)
		return
	}
	if directors == nil {
		directors = []models.Director{}
	}
	c.JSON(http.StatusOK, directors)
}

// @Summary      Get director
// @Tags         directors
// @Produce      json
// @Param        id   path      int  true  "director id"
// @Success      200  {object}  models.Director
// @Failure      404  {object}  errorBody
// @Router       /directors/{id} [get]
func (h *Handler) getDirector(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	director, err := h.services.Directors.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, "director_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, director)
}

// @Summary      Create director
// @Tags         directors
// @Accept       json
// @Produce      json
// @Param        input  body      directorRequest  true  "director"
// @Success      201    {object}  models.Director
// @Failure      400    {object}  errorBody
// @Failure      401    {object}  errorBody
// @Failure      403    {object}  errorBody
// @Router       /directors [post]
// @Security     BearerAuth
func (h *Handler) createDirector(c *gin.Context) {
	var req directorRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	director, err := h.services.Directors.Create(c.Request.Context(), req.input())
	if err != nil {
		fail(c, "director_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, director)
}

// @Summary      Update director
// @Tags         directors
// @Accept       json
// @Produce      json
// @Param        id     path      int              true  "director id"
// @Param        input  body      directorRequest  true  "director"
// @Success      200    {object}  models.Director
// @Failure      400    {object}  errorBody
// @Failure      401    {object}  errorBody
// @Failure      403    {object}  errorBody
// @Failure      404    {object}  errorBody
// @Router       /directors/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateDirector(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req directorRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	director, err := h.services.Directors.Update(c.Request.Context(), id, req.input())
	if err != nil {
		fail(c, "director_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, director)
}

// @Summary      Delete director
// @Description  Movies of the deleted director keep existing with a null director_id.
// @Tags         directors
// @Param        id   path  int  true  "director id"
// @Success      204
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /directors/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteDirector(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.services.Directors.Delete(c.Request.Context(), id); err != nil {
		fail(c, "director_delete_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
