package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/service"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
	"github.com/noah-isme/timetable-solve-api/pkg/response"
)

// TimeslotHandler handles timeslot endpoints.
type TimeslotHandler struct {
	service *service.TimeslotService
}

// NewTimeslotHandler constructs a timeslot handler.
func NewTimeslotHandler(svc *service.TimeslotService) *TimeslotHandler {
	return &TimeslotHandler{service: svc}
}

// List godoc
// @Summary List timeslots in canonical order
// @Tags Timeslots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timeslots [get]
func (h *TimeslotHandler) List(c *gin.Context) {
	slots, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Get godoc
// @Summary Get timeslot by id
// @Tags Timeslots
// @Produce json
// @Param id path int true "Timeslot ID"
// @Success 200 {object} response.Envelope
// @Router /timeslots/{id} [get]
func (h *TimeslotHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	slot, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create timeslot
// @Tags Timeslots
// @Accept json
// @Produce json
// @Param payload body dto.TimeslotRequest true "Timeslot payload"
// @Success 201 {object} response.Envelope
// @Router /timeslots [post]
func (h *TimeslotHandler) Create(c *gin.Context) {
	var req dto.TimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update timeslot
// @Tags Timeslots
// @Accept json
// @Produce json
// @Param id path int true "Timeslot ID"
// @Param payload body dto.TimeslotRequest true "Timeslot payload"
// @Success 200 {object} response.Envelope
// @Router /timeslots/{id} [put]
func (h *TimeslotHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.TimeslotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete timeslot
// @Tags Timeslots
// @Produce json
// @Param id path int true "Timeslot ID"
// @Success 204
// @Router /timeslots/{id} [delete]
func (h *TimeslotHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
