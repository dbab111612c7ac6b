package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/interiora/interiorabackend/dto"
	"github.com/interiora/interiorabackend/services"
	"github.com/interiora/interiorabackend/utils"
)

// POST /send-otp
func SendOTP(store *services.OTPStore, sender services.EmailSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SendOTPDTO
		if err := c.ShouldBindJSON(&body); err != nil || !strings.Contains(body.Email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email is required"})
			return
		}

		email := utils.NormalizeEmail(body.Email)
		sessionID, code := store.Issue(email)

		// The session stays valid on a failed send; the caller may retry
		// delivery through a side channel with the same sessionId.
		if err := sender.SendVerificationEmail(c.Request.Context(), email, code); err != nil {
			log.Printf("send verification email to %s failed: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Verification code sent successfully",
			"sessionId": sessionID,
		})
	}
}

// POST /verify-otp
func VerifyOTP(store *services.OTPStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.VerifyOTPDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.SessionID == "" || body.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID and code are required"})
			return
		}

		email, err := store.Redeem(body.SessionID, body.Code)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Email verified successfully",
			"email":   email,
		})
	}
}
