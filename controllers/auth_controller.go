package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/interiora/interiorabackend/dto"
	"github.com/interiora/interiorabackend/models"
	"github.com/interiora/interiorabackend/utils"
)

func requireAdmin(c *gin.Context) bool {
	roleVal, ok := c.Get("role")
	return ok && roleVal.(string) == "admin"
}

// POST /api/auth/login
func Login(creds *models.CredentialModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password, and role are required"})
			return
		}

		email := utils.NormalizeEmail(body.Email)

		cred, err := creds.FindByEmailAndRole(ctx, email, body.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during login"})
			return
		}
		if cred == nil || !passwordMatches(cred, body.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		userID, _ := cred["id"].(string)

		details, err := creds.RoleDetails(ctx, body.Role, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during login"})
			return
		}
		if details == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User details not found"})
			return
		}

		accessToken, _ := utils.GenerateAccessToken(userID, email, body.Role, utils.AccessTTL())

		user := gin.H{}
		for k, v := range details {
			user[k] = v
		}
		user["id"] = userID
		user["email"] = email
		user["role"] = body.Role

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "Login successful",
			"access_token": accessToken,
			"user":         user,
		})
	}
}

// POST /api/auth/register
func Register(creds *models.CredentialModel) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password, and role are required"})
			return
		}

		email := utils.NormalizeEmail(body.Email)

		existing, err := creds.FindByEmailAndRole(ctx, email, body.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during registration"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		id := body.ID
		if id == "" {
			id = strconv.FormatInt(time.Now().UnixMilli(), 10)
		}

		_, err = creds.Create(ctx, bson.M{
			"id":           id,
			"email":        email,
			"passwordHash": hash,
			"role":         body.Role,
		})
		if err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during registration"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User registered successfully",
			"user": gin.H{
				"id":    id,
				"email": email,
				"role":  body.Role,
			},
		})
	}
}

// passwordMatches checks a bcrypt passwordHash when the credential has one,
// and falls back to comparing the raw password field for documents created
// through the generic collection surface.
func passwordMatches(cred bson.M, password string) bool {
	if hash, ok := cred["passwordHash"].(string); ok && hash != "" {
		return utils.CheckPassword(hash, password) == nil
	}
	stored, ok := cred["password"].(string)
	return ok && stored != "" && stored == password
}
