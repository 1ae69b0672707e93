package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"belajarbahasa/models"
	"belajarbahasa/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type AnswerHandler struct {
	answerService *services.AnswerService
}

func NewAnswerHandler(answerService *services.AnswerService) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
	}
}

// CreateAnswer accepts either a single answer object or {"answers": [...]}.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var probe struct {
		Answers json.RawMessage `json:"answers"`
	}
	if err := c.ShouldBindBodyWith(&probe, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}

	if probe.Answers != nil {
		h.createMany(c)
		return
	}

	var req services.CreateAnswerRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}

	answer, err := h.answerService.CreateOne(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, "Create question answer", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Question answer created successfully", answer)
}

func (h *AnswerHandler) createMany(c *gin.Context) {
	var req services.CreateAnswersRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondBindError(c, err)
			return
		}
		respondError(c, http.StatusBadRequest, "Payload must include non-empty 'answers' array")
		return
	}

	count, err := h.answerService.CreateMany(c.Request.Context(), req.Answers)
	if err != nil {
		respondServiceError(c, "Create question answers", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Question answers created successfully",
		"count":   count,
	})
}

func (h *AnswerHandler) GetAllAnswers(c *gin.Context) {
	answers, err := h.answerService.FindAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, "Get all answers", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", answers)
}

func (h *AnswerHandler) GetAnswerByID(c *gin.Context) {
	answer, err := h.answerService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, "Get answer by id", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", answer)
}

func (h *AnswerHandler) GetAnswersByLanguage(c *gin.Context) {
	language := models.Language(c.Param("language"))

	answers, err := h.answerService.FindByLanguage(c.Request.Context(), language)
	if err != nil {
		respondServiceError(c, "Get answers by language", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", answers)
}

func (h *AnswerHandler) GetAnswersByUser(c *gin.Context) {
	answers, err := h.answerService.FindByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondServiceError(c, "Get answers by user", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", answers)
}

func (h *AnswerHandler) GetAnswersBySession(c *gin.Context) {
	session, err := strconv.Atoi(c.Param("session"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid session")
		return
	}

	answers, err := h.answerService.FindBySession(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, "Get answers by session", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", answers)
}
