package server

import (
	"github.com/alexanderramin/riff/internal/apperrors"
	"github.com/gin-gonic/gin"
)

func errorBody(apiErr *apperrors.APIError) gin.H {
	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	return gin.H{"error": body}
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		apiErr = apperrors.Internal("")
	}
	c.JSON(apiErr.Status, errorBody(apiErr))
}

func abortWithError(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, errorBody(apiErr))
}

func invalidJSON(c *gin.Context) {
	writeError(c, apperrors.BadRequest("invalid_json", "invalid request body"))
}
