package handlers

import (
	"net/http"

	"belajarbahasa/models"
	"belajarbahasa/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, "Create user", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, "Login user", err)
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", user)
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, "Get all users", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, "Get user", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, "Update user", err)
		return
	}

	respondSuccess(c, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) GetUserAnswers(c *gin.Context) {
	language := models.Language(c.Query("language"))

	answers, err := h.userService.GetAnswersForUser(c.Request.Context(), c.Param("id"), language)
	if err != nil {
		respondServiceError(c, "Get user answers", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", answers)
}

func (h *UserHandler) GetUsersByLanguage(c *gin.Context) {
	language := models.Language(c.Param("language"))

	users, err := h.userService.ListByLanguage(c.Request.Context(), language)
	if err != nil {
		respondServiceError(c, "Get users by language", err)
		return
	}

	respondSuccess(c, http.StatusOK, "", users)
}
