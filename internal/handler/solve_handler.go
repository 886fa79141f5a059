package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	"github.com/noah-isme/timetable-solve-api/internal/service"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
	"github.com/noah-isme/timetable-solve-api/pkg/response"
)

// SolveHandler exposes the solve trigger endpoint.
type SolveHandler struct {
	service *service.SolveService
}

// NewSolveHandler constructs a solve handler.
func NewSolveHandler(svc *service.SolveService) *SolveHandler {
	return &SolveHandler{service: svc}
}

// Solve godoc
// @Summary Trigger a timetable solve
// @Description Assembles the solver input for the term, calls the external solver, and persists the resulting schedule atomically.
// @Tags Solve
// @Accept json
// @Produce json
// @Param payload body dto.SolveRequest false "Solve request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /solve [post]
func (h *SolveHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve payload"))
		return
	}

	resp, err := h.service.Solve(c.Request.Context(), req)
	if err != nil {
		var rejected *models.SolveRejectedError
		if errors.As(err, &rejected) {
			response.Error(c, appErrors.Clone(appErrors.ErrSolverRejected, rejected.Error()))
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
