package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/middleware"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/profile", injectUserID(1), handler.GetProfile)
	r.PUT("/profile/share-link", injectUserID(1), handler.UpdateShareLink)
	r.GET("/anonymous-profile", handler.GetProfile)
	return r
}

func testIssuer() *middleware.TokenIssuer {
	return middleware.NewTokenIssuer("test-secret", time.Hour)
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with a usable token", func(t *testing.T) {
		issuer := testIssuer()
		handler := NewAuthHandler(&mockUserService{
			createUserFn: func(email, _, name string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: 7}, Email: email, Name: name}, nil
			},
		}, issuer)
		r := setupAuthRouter(handler)

		rec := doRequest(r, "POST", "/auth/register", `{"email":"ana@example.com","password":"password123","name":"Ana"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		token, _ := result["token"].(string)
		claims, err := issuer.Parse(token)
		if err != nil {
			t.Fatalf("token did not parse: %v", err)
		}
		if claims.UserID != 7 {
			t.Errorf("expected user id 7 in token, got %d", claims.UserID)
		}
		user := result["user"].(map[string]interface{})
		if user["name"] != "Ana" {
			t.Errorf("expected name Ana, got %v", user["name"])
		}
		if _, leaked := user["password"]; leaked {
			t.Error("password must not be rendered")
		}
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testIssuer()))
		rec := doRequest(r, "POST", "/auth/register", `{"email":"ana@example.com","password":"short"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{
			createUserFn: func(string, string, string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}, testIssuer())
		rec := doRequest(setupAuthRouter(handler), "POST", "/auth/register", `{"email":"ana@example.com","password":"password123"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 on valid credentials", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testIssuer()))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"ana@example.com","password":"password123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["token"] == "" {
			t.Error("expected a token")
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{
			attemptLoginFn: func(string, string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}, testIssuer())
		rec := doRequest(setupAuthRouter(handler), "POST", "/auth/login", `{"email":"ana@example.com","password":"nope"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, testIssuer()))
		rec := doRequest(r, "POST", "/auth/login", `{"email":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("returns the caller", func(t *testing.T) {
		var gotID uint
		handler := NewAuthHandler(&mockUserService{
			getUserByIDFn: func(id uint) (*models.User, error) {
				gotID = id
				return &models.User{Base: models.Base{ID: id}, Email: "me@example.com"}, nil
			},
		}, testIssuer())
		rec := doRequest(setupAuthRouter(handler), "GET", "/profile", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotID != 1 {
			t.Errorf("expected lookup of user 1, got %d", gotID)
		}
	})

	t.Run("returns 401 without a user in context", func(t *testing.T) {
		rec := doRequest(setupAuthRouter(NewAuthHandler(&mockUserService{}, testIssuer())), "GET", "/anonymous-profile", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("updates the share link", func(t *testing.T) {
		var gotLink string
		handler := NewAuthHandler(&mockUserService{
			setShareLinkFn: func(userID uint, link string) (*models.User, error) {
				gotLink = link
				return &models.User{Base: models.Base{ID: userID}, ShareLink: &link}, nil
			},
		}, testIssuer())
		rec := doRequest(setupAuthRouter(handler), "PUT", "/profile/share-link", `{"share_link":"https://wa.me/551199"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotLink != "https://wa.me/551199" {
			t.Errorf("unexpected link passed to service: %q", gotLink)
		}
	})
}
