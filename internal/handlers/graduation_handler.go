package handlers

import (
	"net/http"

	"github.com/edutrial/thpt-score-service/internal/graduation"
	"github.com/edutrial/thpt-score-service/internal/services"
	"github.com/edutrial/thpt-score-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GraduationHandler struct {
	BaseHandler
	graduationService services.GraduationService
}

func NewGraduationHandler(graduationService services.GraduationService, logger utils.Logger) *GraduationHandler {
	return &GraduationHandler{
		BaseHandler:       NewBaseHandler(logger),
		graduationService: graduationService,
	}
}

// GetForm returns the subject catalogue, field bounds and formulas
// @Router /graduation-score/form [get]
func (h *GraduationHandler) GetForm(c *gin.Context) {
	h.RespondWithSuccess(c, http.StatusOK, "Graduation score form", h.graduationService.Form(c.Request.Context()))
}

// ValidateInput reports every validation error without scoring
// @Router /graduation-score/validate [post]
func (h *GraduationHandler) ValidateInput(c *gin.Context) {
	var in graduation.Input
	if !h.bindInput(c, &in) {
		return
	}

	result := h.graduationService.Validate(c.Request.Context(), in)
	h.RespondWithSuccess(c, http.StatusOK, "Validation completed", result)
}

// Calculate scores one candidate. Invalid input answers 422 with every error.
// @Router /graduation-score/calculate [post]
func (h *GraduationHandler) Calculate(c *gin.Context) {
	var in graduation.Input
	if !h.bindInput(c, &in) {
		return
	}

	result, err := h.graduationService.Calculate(c.Request.Context(), in)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, result.Message, result)
}

func (h *GraduationHandler) bindInput(c *gin.Context, in *graduation.Input) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	return true
}
