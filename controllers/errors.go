package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/services"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	var valErr *services.ValidationError
	var nfErr *services.NotFoundError
	var upErr *services.UploadError
	var trErr *services.TransientError

	switch {
	case errors.As(err, &valErr):
		respondError(c, http.StatusBadRequest, valErr.Message)
	case errors.As(err, &nfErr):
		respondError(c, http.StatusNotFound, nfErr.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrSelfReport),
		errors.Is(err, services.ErrPostInactive),
		errors.Is(err, services.ErrPostUnapproved),
		errors.Is(err, services.ErrInactive),
		errors.Is(err, services.ErrInvalidStatus):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &upErr):
		log.Printf("Photo upload failed: %v", err)
		respondError(c, http.StatusBadGateway, "Failed to upload photos")
	case errors.As(err, &trErr):
		log.Printf("Transient failure: %v", err)
		respondError(c, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry")
	default:
		log.Printf("Unhandled service error: %v", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
