package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONSuccess sends a response with success set and the given payload
// fields merged in at the top level.
func JSONSuccess(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// JSONError sends a structured failure with a machine-readable error kind
// and a human-readable message.
func JSONError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   kind,
		"message": message,
	})
}

// JSONVoiceError is JSONError with an additional spoken message for voice
// routes.
func JSONVoiceError(c *gin.Context, status int, kind, message, voiceMessage string) {
	c.JSON(status, gin.H{
		"success":       false,
		"error":         kind,
		"message":       message,
		"voice_message": voiceMessage,
	})
}
