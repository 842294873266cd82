package tags

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

// seedURL creates a UTub owned by creatorID with one URL entry in it.
func seedURL(t *testing.T, db *gorm.DB, creatorID uint) (utubID, urlID uint) {
	e := engine.New(db)
	utub, err := e.CreateUTub(creatorID, "Links", "")
	if err != nil {
		t.Fatalf("Failed to create utub: %v", err)
	}
	entry, err := e.AddURL(creatorID, utub.ID, "https://example.com", "")
	if err != nil {
		t.Fatalf("Failed to add url: %v", err)
	}
	return utub.ID, entry.URLID
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

type linkResp struct {
	TagID     uint   `json:"tag_id"`
	TagString string `json:"tag_string"`
	Changed   bool   `json:"changed"`
}

func TestAddTag(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utubID, urlID := seedURL(t, db, alice.ID)

	path := fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, urlID)
	resp := doJSON(r, "POST", path, token, gin.H{"tag": "golang"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var link linkResp
	json.Unmarshal(resp.Body.Bytes(), &link)
	if link.TagString != "golang" {
		t.Errorf("Expected tag 'golang', got %q", link.TagString)
	}

	// Same tag on the same URL conflicts
	resp = doJSON(r, "POST", path, token, gin.H{"tag": "golang"})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate tag, got %d", resp.Code)
	}
}

func TestAddTagCeiling(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utubID, urlID := seedURL(t, db, alice.ID)

	path := fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, urlID)
	for i := 0; i < engine.MaxTagsPerURL; i++ {
		resp := doJSON(r, "POST", path, token, gin.H{"tag": fmt.Sprintf("tag%d", i)})
		if resp.Code != http.StatusCreated {
			t.Fatalf("Tag %d: expected status 201, got %d: %s", i, resp.Code, resp.Body.String())
		}
	}

	resp := doJSON(r, "POST", path, token, gin.H{"tag": "overflow"})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 at tag ceiling, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestModifyTag(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utubID, urlID := seedURL(t, db, alice.ID)

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, urlID),
		token, gin.H{"tag": "golang"})
	var link linkResp
	json.Unmarshal(resp.Body.Bytes(), &link)

	path := fmt.Sprintf("/utubs/%d/urls/%d/tags/%d", utubID, urlID, link.TagID)
	resp = doJSON(r, "PUT", path, token, gin.H{"tag": "go"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var modified linkResp
	json.Unmarshal(resp.Body.Bytes(), &modified)
	if modified.TagString != "go" || !modified.Changed {
		t.Errorf("Expected modified tag 'go', got %+v", modified)
	}

	// Same string reports no change
	path = fmt.Sprintf("/utubs/%d/urls/%d/tags/%d", utubID, urlID, modified.TagID)
	resp = doJSON(r, "PUT", path, token, gin.H{"tag": "go"})
	json.Unmarshal(resp.Body.Bytes(), &modified)
	if modified.Changed {
		t.Error("Expected changed false for identical tag string")
	}
}

func TestRemoveTag(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utubID, urlID := seedURL(t, db, alice.ID)

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, urlID),
		token, gin.H{"tag": "golang"})
	var link linkResp
	json.Unmarshal(resp.Body.Bytes(), &link)

	path := fmt.Sprintf("/utubs/%d/urls/%d/tags/%d", utubID, urlID, link.TagID)
	resp = doJSON(r, "DELETE", path, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(r, "DELETE", path, token, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for repeated removal, got %d", resp.Code)
	}
}

func TestTagNonMemberForbidden(t *testing.T) {
	db, r := setupTest(t)
	alice, _ := createUser(t, db, "alice")
	_, bobToken := createUser(t, db, "bob")
	utubID, urlID := seedURL(t, db, alice.ID)

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, urlID),
		bobToken, gin.H{"tag": "sneaky"})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for non-member, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAddTagRejectsMarkup(t *testing.T) {
	db, r := setupTest(t)
	alice, token := createUser(t, db, "alice")
	utubID, urlID := seedURL(t, db, alice.ID)

	resp := doJSON(r, "POST", fmt.Sprintf("/utubs/%d/urls/%d/tags", utubID, urlID),
		token, gin.H{"tag": "<b>bold</b>"})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for markup tag, got %d: %s", resp.Code, resp.Body.String())
	}
}
