package urls

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/utubapp/utub-server/pkg/utub/auth"
	"github.com/utubapp/utub-server/pkg/utub/engine"
	"github.com/utubapp/utub-server/pkg/utub/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	group := r.Group("/utubs", auth.AuthMiddleware())
	handler.RegisterRoutes(group)
	return db, r
}

func createUser(t *testing.T, db *gorm.DB, username string) (models.User, string) {
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return user, token
}

func createUTub(t *testing.T, db *gorm.DB, creatorID uint, name string) *models.UTub {
	utub, err := engine.New(db).CreateUTub(creatorID, name, "")
	if err != nil {
		t.Fatalf("Failed to create utub: %v", err)
	}
	return utub
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

type entryResp struct {
	URLID     uint   `json:"url_id"`
	URLString string `json:"url_string"`
	Notes     string `json:"notes"`
	Changed   bool   `json:"changed"`
}

func TestAddURL(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utub := createUTub(t, db, alice.ID, "Links")

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls", utub.ID), token,
		gin.H{"url": "example.com/page", "notes": "worth a read"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var entry entryResp
	json.Unmarshal(resp.Body.Bytes(), &entry)
	if entry.URLString != "https://example.com/page" {
		t.Errorf("Expected normalized url, got %q", entry.URLString)
	}
	if entry.Notes != "worth a read" {
		t.Errorf("Expected notes to round-trip, got %q", entry.Notes)
	}

	// Same URL again conflicts
	resp = doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls", utub.ID), token,
		gin.H{"url": "https://example.com/page"})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate url, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAddURLRejectsInvalid(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utub := createUTub(t, db, alice.ID, "Links")

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls", utub.ID), token,
		gin.H{"url": "not a url at all"})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid url, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAddURLNonMemberForbidden(t *testing.T) {
	db, r := setupTest(t)
	alice, _ := createUser(t, db, "alice")
	_, bobToken := createUser(t, db, "bob")
	utub := createUTub(t, db, alice.ID, "Links")

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls", utub.ID), bobToken,
		gin.H{"url": "https://example.com"})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for non-member, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestEditURLNotes(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utub := createUTub(t, db, alice.ID, "Links")

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls", utub.ID), token,
		gin.H{"url": "https://example.com", "notes": "old"})
	var entry entryResp
	json.Unmarshal(resp.Body.Bytes(), &entry)

	path := fmt.Sprintf("/utubs/%d/urls/%d", utub.ID, entry.URLID)
	resp = doJSON(r, "PUT", path, token, gin.H{"url": "https://example.com", "notes": "new"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	json.Unmarshal(resp.Body.Bytes(), &entry)
	if entry.Notes != "new" || !entry.Changed {
		t.Errorf("Expected updated notes, got %+v", entry)
	}

	// Identical payload reports no change
	resp = doJSON(r, "PUT", path, token, gin.H{"url": "https://example.com", "notes": "new"})
	json.Unmarshal(resp.Body.Bytes(), &entry)
	if entry.Changed {
		t.Error("Expected changed false for identical edit")
	}
}

func TestEditURLRepoints(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utub := createUTub(t, db, alice.ID, "Links")

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls", utub.ID), token,
		gin.H{"url": "https://example.com/old"})
	var entry entryResp
	json.Unmarshal(resp.Body.Bytes(), &entry)
	oldID := entry.URLID

	resp = doJSON(r, "PUT", fmt.Sprintf("/utubs/%d/urls/%d", utub.ID, oldID), token,
		gin.H{"url": "https://example.com/new"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	json.Unmarshal(resp.Body.Bytes(), &entry)
	if entry.URLID == oldID {
		t.Error("Expected url_id to change after edit")
	}
	if entry.URLString != "https://example.com/new" {
		t.Errorf("Expected new url string, got %q", entry.URLString)
	}
}

func TestRemoveURL(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utub := createUTub(t, db, alice.ID, "Links")

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls", utub.ID), token,
		gin.H{"url": "https://example.com"})
	var entry entryResp
	json.Unmarshal(resp.Body.Bytes(), &entry)

	path := fmt.Sprintf("/utubs/%d/urls/%d", utub.ID, entry.URLID)
	resp = doJSON(r, "DELETE", path, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// Removing again is a 404, not an error repeat
	resp = doJSON(r, "DELETE", path, token, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for repeated removal, got %d", resp.Code)
	}
}
