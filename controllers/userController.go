package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
	"github.com/Siilah/services"
)

func issueToken(user models.UserProfile) (string, error) {
	role := "user"
	if user.Admin {
		role = "admin"
	}

	generateToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   user.User_ID,
		"exp":  time.Now().Add(initializers.TokenTTL()).Unix(),
		"role": role,
	})
	secret, err := initializers.JWTSecret()
	if err != nil {
		return "", err
	}
	return generateToken.SignedString(secret)
}

// Onboard creates the profile collected by the onboarding wizard and signs the user in.
func Onboard(c *gin.Context) {
	var onboard models.UserProfileOnboard
	if err := c.ShouldBindJSON(&onboard); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid onboarding data", "details": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(onboard.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user, err := sanctuary.RegisterUser(onboard, string(passwordHash))
	if err != nil {
		respondWithError(c, "Failed to create user", err)
		return
	}

	token, err := issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	initializers.Log.Infow("user onboarded", "userId", user.User_ID, "faithStage", user.Faith_Stage)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User onboarded successfully.",
		"token":   token,
		"user":    user,
	})
}

func UserLogin(c *gin.Context) {
	var login models.Login
	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	user, err := sanctuary.FindUserByEmail(login.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Seeded community members have no password and cannot sign in.
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(login.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully.",
		"token":   token,
		"user":    user,
	})
}

func GetUserProfile(c *gin.Context) {

	user, _ := c.Get("currentUser")

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"admin": c.MustGet("admin"),
	})
}

// UpdateUserSettings applies profile, privacy and notification preference changes.
func UpdateUserSettings(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var update models.UserProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings", "details": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	user, err := sanctuary.UpdateUserSettings(currentUser.User_ID, update)
	if err != nil {
		respondWithError(c, "Failed to update settings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings updated successfully.",
		"user":    user,
	})
}
