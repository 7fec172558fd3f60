package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/services"
	"github.com/soilq/soilq-api/tests/testutil"
)

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
}

// useAuth0Server points the Auth0 client at a mock serving info for the
// access token the mock auth middleware sets
func useAuth0Server(t *testing.T, info *services.Auth0UserInfo) {
	t.Helper()

	server := setupMockAuth0Server(map[string]*services.Auth0UserInfo{"test-access-token": info})
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Auth0Domain = server.URL
	useConfig(t, cfg)
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name           string
		info           services.Auth0UserInfo
		body           any
		acceptLanguage string
		expectedStatus int
		expectedCode   string
		expectedLang   string
	}{
		{
			name:           "Create user with default language",
			info:           services.Auth0UserInfo{Sub: farmerID, Email: "ravi@example.com", Name: "Ravi"},
			expectedStatus: http.StatusCreated,
			expectedLang:   "en",
		},
		{
			name:           "Language from request body",
			info:           services.Auth0UserInfo{Sub: farmerID, Email: "ravi@example.com", Name: "Ravi"},
			body:           map[string]string{"language": "te"},
			expectedStatus: http.StatusCreated,
			expectedLang:   "te",
		},
		{
			name:           "Language from Accept-Language",
			info:           services.Auth0UserInfo{Sub: farmerID, Email: "ravi@example.com", Name: "Ravi"},
			acceptLanguage: "hi-IN,hi;q=0.9,en;q=0.5",
			expectedStatus: http.StatusCreated,
			expectedLang:   "hi",
		},
		{
			name:           "Language from Auth0 locale",
			info:           services.Auth0UserInfo{Sub: farmerID, Email: "ravi@example.com", Name: "Ravi", Locale: "te_IN"},
			expectedStatus: http.StatusCreated,
			expectedLang:   "te",
		},
		{
			name:           "Unsupported language",
			info:           services.Auth0UserInfo{Sub: farmerID, Email: "ravi@example.com", Name: "Ravi"},
			body:           map[string]string{"language": "fr"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "Fail with missing email",
			info:           services.Auth0UserInfo{Sub: farmerID, Name: "Ravi"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_EMAIL",
		},
		{
			name:           "Fail with missing name",
			info:           services.Auth0UserInfo{Sub: farmerID, Email: "ravi@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestDB(t)
			useAuth0Server(t, &tt.info)

			router := setupTestRouter()
			router.POST("/users", testutil.MockAuthMiddleware(farmerID), CreateUser)

			var w *httptest.ResponseRecorder
			if tt.acceptLanguage != "" {
				req := httptest.NewRequest(http.MethodPost, "/users", nil)
				req.Header.Set("Accept-Language", tt.acceptLanguage)
				w = httptest.NewRecorder()
				router.ServeHTTP(w, req)
			} else {
				w = doRequest(router, http.MethodPost, "/users", tt.body)
			}

			if tt.expectedCode != "" {
				requireErrorCode(t, w, tt.expectedStatus, tt.expectedCode)
				return
			}

			require.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
			var user models.User
			decodeData(t, w, &user)
			assert.Equal(t, farmerID, user.Auth0ID)
			assert.Equal(t, tt.info.Email, user.Email)
			assert.Equal(t, tt.info.Name, user.Name)
			assert.Equal(t, tt.expectedLang, user.Language)
		})
	}
}

func TestCreateUser_Auth0Failure(t *testing.T) {
	setupTestDB(t)

	server := setupMockAuth0Server(map[string]*services.Auth0UserInfo{})
	defer server.Close()
	cfg := config.Default()
	cfg.Auth0Domain = server.URL
	useConfig(t, cfg)

	router := setupTestRouter()
	router.POST("/users", testutil.MockAuthMiddleware(farmerID), CreateUser)

	w := doRequest(router, http.MethodPost, "/users", nil)
	requireErrorCode(t, w, http.StatusInternalServerError, "AUTH0_ERROR")
}

func TestCreateUser_Duplicate(t *testing.T) {
	tests := []struct {
		name  string
		sub   string
		email string
	}{
		{"duplicate auth0 id", farmerID, "second@example.com"},
		{"duplicate email", "auth0|second", "ravi@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			testutil.CreateUser(t, db, farmerID, "ravi@example.com")
			useAuth0Server(t, &services.Auth0UserInfo{Sub: tt.sub, Email: tt.email, Name: "Second"})

			router := setupTestRouter()
			router.POST("/users", testutil.MockAuthMiddleware(tt.sub), CreateUser)

			w := doRequest(router, http.MethodPost, "/users", nil)
			requireErrorCode(t, w, http.StatusConflict, "USER_EXISTS")
		})
	}
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	testutil.CreateUser(t, db, farmerID, "ravi@example.com")

	router := setupTestRouter()
	router.GET("/users/me", testutil.MockAuthMiddleware(farmerID), GetMyProfile)
	router.GET("/others/me", testutil.MockAuthMiddleware(otherID), GetMyProfile)
	router.GET("/anonymous/me", GetMyProfile)

	w := doRequest(router, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	decodeData(t, w, &user)
	assert.Equal(t, "ravi@example.com", user.Email)
	assert.Equal(t, "en", user.Language)

	requireErrorCode(t, doRequest(router, http.MethodGet, "/others/me", nil), http.StatusNotFound, "USER_NOT_FOUND")
	requireErrorCode(t, doRequest(router, http.MethodGet, "/anonymous/me", nil), http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestUpdateMyProfile(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedCode   string
		check          func(t *testing.T, u models.User)
	}{
		{
			name:           "Update all fields",
			body:           map[string]string{"name": "Ravi Kumar", "email": "ravi.k@example.com", "language": "hi"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, u models.User) {
				assert.Equal(t, "Ravi Kumar", u.Name)
				assert.Equal(t, "ravi.k@example.com", u.Email)
				assert.Equal(t, "hi", u.Language)
			},
		},
		{
			name:           "Partial update keeps other fields",
			body:           map[string]string{"language": "te"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, u models.User) {
				assert.Equal(t, "Test Farmer", u.Name)
				assert.Equal(t, "ravi@example.com", u.Email)
				assert.Equal(t, "te", u.Language)
			},
		},
		{
			name:           "Empty update returns profile",
			body:           map[string]string{},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, u models.User) {
				assert.Equal(t, "ravi@example.com", u.Email)
			},
		},
		{
			name:           "Invalid email",
			body:           map[string]string{"email": "not-an-email"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "Unsupported language",
			body:           map[string]string{"language": "de"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "Email taken by another user",
			body:           map[string]string{"email": "taken@example.com"},
			expectedStatus: http.StatusConflict,
			expectedCode:   "EMAIL_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			testutil.CreateUser(t, db, farmerID, "ravi@example.com")
			testutil.CreateUser(t, db, otherID, "taken@example.com")

			router := setupTestRouter()
			router.PUT("/users/me", testutil.MockAuthMiddleware(farmerID), UpdateMyProfile)

			w := doRequest(router, http.MethodPut, "/users/me", tt.body)
			if tt.expectedCode != "" {
				requireErrorCode(t, w, tt.expectedStatus, tt.expectedCode)
				return
			}

			require.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
			var user models.User
			decodeData(t, w, &user)
			tt.check(t, user)
		})
	}
}

func TestUpdateMyProfile_UserNotFound(t *testing.T) {
	setupTestDB(t)

	router := setupTestRouter()
	router.PUT("/users/me", testutil.MockAuthMiddleware(farmerID), UpdateMyProfile)

	w := doRequest(router, http.MethodPut, "/users/me", map[string]string{"name": "Nobody"})
	requireErrorCode(t, w, http.StatusNotFound, "USER_NOT_FOUND")
}

func TestPreferredLanguage(t *testing.T) {
	tests := []struct {
		acceptLanguage string
		locale         string
		want           string
	}{
		{"", "", "en"},
		{"hi", "", "hi"},
		{"te-IN", "", "te"},
		{"fr-FR", "", "en"},
		{"", "hi_IN", "hi"},
		{"garbage;;", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.acceptLanguage+"|"+tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, preferredLanguage(tt.acceptLanguage, tt.locale))
		})
	}
}
