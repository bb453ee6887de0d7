package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
	"github.com/Siilah/services"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// SetupTestDB creates a mock database and installs it as the activity journal for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	goquDB := goqu.New("postgres", db)

	// Store originals to restore after test
	originalDB := initializers.DB
	initializers.DB = goquDB
	originalJournal := services.SetActivityJournal(services.NewActivityJournal(goquDB))

	cleanup := func() {
		db.Close()
		initializers.DB = originalDB
		services.SetActivityJournal(originalJournal)
	}

	return db, mock, cleanup
}

// SetupTestSanctuary installs a fresh sanctuary and notification center.
// Companion replies are immediate so tests only need to wait on the sanctuary.
func SetupTestSanctuary(t *testing.T, gateway services.Gateway) *services.Sanctuary {
	center := services.NewNotificationCenter(nil)
	sanctuary := services.NewSanctuary(services.SanctuaryConfig{
		AdminEmails: []string{"admin@example.com"},
	}, services.SanctuaryDeps{
		Gateway:  gateway,
		Notifier: center,
	})

	previousSanctuary := services.SetSanctuary(sanctuary)
	previousCenter := services.SetNotificationCenter(center)
	t.Cleanup(func() {
		sanctuary.Close()
		services.SetSanctuary(previousSanctuary)
		services.SetNotificationCenter(previousCenter)
	})
	return sanctuary
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

// SetJSONBody attaches body, encoded as JSON, to the context's request
func SetJSONBody(c *gin.Context, method, target string, body interface{}) {
	payload, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
}

// SetParams sets gin route params from alternating key, value pairs
func SetParams(c *gin.Context, keyValues ...string) {
	for i := 0; i+1 < len(keyValues); i += 2 {
		c.Params = append(c.Params, gin.Param{Key: keyValues[i], Value: keyValues[i+1]})
	}
}

// SetAuthenticatedUser sets the currentUser and admin values in the Gin context
// This simulates what the CheckAuth middleware does
func SetAuthenticatedUser(c *gin.Context, user models.UserProfile, isAdmin bool) {
	c.Set("currentUser", user)
	c.Set("admin", isAdmin)
}
