package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"belajarbahasa/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondServiceError maps service errors to status codes. Unexpected
// errors are logged with action and hidden from the client.
func respondServiceError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("%s error: %v", action, err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// respondBindError maps request body decoding and validation failures.
func respondBindError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &maxBytesErr):
		respondError(c, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.As(err, &validationErrs):
		details := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": details,
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		respondError(c, http.StatusBadRequest, "Invalid JSON in request body")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		respondError(c, http.StatusBadRequest, "Invalid value for field "+typeErr.Field)
	case errors.Is(err, io.EOF):
		respondError(c, http.StatusBadRequest, "Request body is required")
	default:
		respondError(c, http.StatusBadRequest, "Bad request")
	}
}
