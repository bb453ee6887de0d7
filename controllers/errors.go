package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/services"
)

// statusFor maps service errors onto HTTP statuses. The second value is false
// for errors the services package does not define, which are usually gateway
// or infrastructure failures.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, services.ErrCircleNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, services.ErrNotCircleMember),
		errors.Is(err, services.ErrNotAuthor):
		return http.StatusForbidden, true
	case errors.Is(err, services.ErrEmptySubmission),
		errors.Is(err, services.ErrVoiceNoteTooLong),
		errors.Is(err, services.ErrVoiceNoteInvalid),
		errors.Is(err, services.ErrInvalidPostType),
		errors.Is(err, services.ErrInvalidReaction),
		errors.Is(err, services.ErrEmptyMatch):
		return http.StatusBadRequest, true
	case errors.Is(err, services.ErrPrayerAnswered),
		errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, true
	case errors.Is(err, services.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, true
	}
	return http.StatusInternalServerError, false
}

func respondWithError(c *gin.Context, message string, err error) {
	status, _ := statusFor(err)
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// respondWithGatewayError answers an explicit AI request. Unknown failures come
// from the upstream model, so they are reported as a bad gateway.
func respondWithGatewayError(c *gin.Context, message string, err error) {
	status, known := statusFor(err)
	if !known {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// isDomainError reports whether err is a caller problem rather than an AI outage.
func isDomainError(err error) bool {
	status, known := statusFor(err)
	return known && status != http.StatusServiceUnavailable
}

// aiContext keeps the request's values but not its cancellation, so a client
// going away does not abort a model call whose result is cached.
func aiContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func getSanctuary(c *gin.Context) (*services.Sanctuary, bool) {
	sanctuary := services.GetSanctuary()
	if sanctuary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sanctuary is not initialized"})
		return nil, false
	}
	return sanctuary, true
}
