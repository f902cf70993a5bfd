package handlers

import (
	"net/http"
	"strconv"

	"film_api/internal/models"
	"film_api/internal/service"

	"github.com/gin-gonic/gin"
)

// movieRequest is the create/update payload. Pointers tell a missing field
// apart from a zero value.
type movieRequest struct {
	Title      *string `json:"title" binding:"required" example:"Arrival"`
	DirectorID *int64  `json:"director_id" binding:"required" example:"1"`
	Year       *int    `json:"year" binding:"required" example:"2016"`
}

func (r movieRequest) input() models.MovieInput {
	return models.MovieInput{Title: *r.Title, DirectorID: *r.DirectorID, Year: *r.Year}
}

// parseID reads the :id path parameter. Anything but a positive integer is
// reported as not found.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, "invalid_id", service.ErrNotFound)
		return 0, false
	}
	return id, true
}

// @Summary      List movies
// @Description  All movies ascending by id, with the director name when the director still exists.
// @Tags         movies
// @Produce      json
// @Success      200  {array}   models.Movie
// @Failure      500  {object}  errorBody
// @Router       /movies [get]
func (h *Handler) listMovies(c *gin.Context) {
	movies, err := h.services.Movies.List(c.Request.Context())
	if err != nil {
		fail(c, "movie_list_failed", err)
		return
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	c.JSON(http.StatusOK, movies)
}

// @Summary      Get movie
// @Tags         movies
// @Produce      json
// @Param        id   path      int  true  "movie id"
// @Success      200  {object}  models.Movie
// @Failure      404  {object}  errorBody
// @Router       /movies/{id} [get]
func (h *Handler) getMovie(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	movie, err := h.services.Movies.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, "movie_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// @Summary      Create movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Param        input  body      movieRequest  true  "movie"
// @Success      201    {object}  models.Movie
// @Failure      400    {object}  errorBody
// @Failure      401    {object}  errorBody
// @Failure      403    {object}  errorBody
// @Router       /movies [post]
// @Security     BearerAuth
func (h *Handler) createMovie(c *gin.Context) {
	var req movieRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	movie, err := h.services.Movies.Create(c.Request.Context(), req.input())
	if err != nil {
		fail(c, "movie_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

// @Summary      Update movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Param        id     path      int           true  "movie id"
// @Param        input  body      movieRequest  true  "movie"
// @Success      200    {object}  models.Movie
// @Failure      400    {object}  errorBody
// @Failure      401    {object}  errorBody
// @Failure      403    {object}  errorBody
// @Failure      404    {object}  errorBody
// @Router       /movies/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateMovie(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req movieRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	movie, err := h.services.Movies.Update(c.Request.Context(), id, req.input())
	if err != nil {
		fail(c, "movie_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// @Summary      Delete movie
// @Tags         movies
// @Param        id   path  int  true  "movie id"
// @Success      204
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /movies/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteMovie(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.services.Movies.Delete(c.Request.Context(), id); err != nil {
		fail(c, "movie_delete_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
