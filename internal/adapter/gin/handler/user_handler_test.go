package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"user-account-service/internal/adapter/gin/middleware"
	domain "user-account-service/internal/domain/user"
	usecase "user-account-service/internal/usecase/user"
	pkgerrors "user-account-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*usecase.RegisterResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RegisterResponse), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LoginResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.GetUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GetUserResponse), args.Error(1)
}

func (m *MockUserUsecase) UpdateProfile(ctx context.Context, req usecase.UpdateProfileRequest) (*usecase.UpdateProfileResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UpdateProfileResponse), args.Error(1)
}

func (m *MockUserUsecase) DeleteProfile(ctx context.Context, req usecase.DeleteProfileRequest) (*usecase.DeleteProfileResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DeleteProfileResponse), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, req usecase.ListUsersRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *UserHandler, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	logger := zaptest.NewLogger(t)
	handler := NewUserHandler(mockUsecase, logger)

	r := gin.New()
	return r, handler, mockUsecase
}

// asAuthenticated stands in for the authentication gate in handler tests
func asAuthenticated(u *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetUser(c, u)
		c.Next()
	}
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/users", handler.Register)

		reqBody := RegisterRequest{
			Username:  "a@b.com",
			Password:  "secret",
			Firstname: "Ann",
			Lastname:  "Lee",
		}
		jsonBody, _ := json.Marshal(reqBody)

		mockUsecase.On("Register", mock.Anything, mock.MatchedBy(func(req usecase.RegisterRequest) bool {
			return req.Username == "a@b.com" && req.Password == "secret"
		})).Return(&usecase.RegisterResponse{
			User: usecase.User{ID: 1, Username: "a@b.com", Firstname: "Ann", Lastname: "Lee"},
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/users", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "a@b.com", resp.Username)

		// No projection may carry a password field
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/users", handler.Register)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/users", bytes.NewBufferString("invalid json"))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing Required Field", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/users", handler.Register)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/users",
			bytes.NewBufferString(`{"username":"a@b.com","password":"secret","firstname":"Ann"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/users", handler.Register)

		mockUsecase.On("Register", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewAlreadyExistsError("user", "Email already exists"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/users",
			bytes.NewBufferString(`{"username":"a@b.com","password":"secret","firstname":"Ann","lastname":"Lee"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Email already exists", resp.Error)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/users/login", handler.Login)

		mockUsecase.On("Login", mock.Anything, usecase.LoginRequest{Username: "a@b.com", Password: "secret"}).
			Return(&usecase.LoginResponse{
				User:  usecase.User{ID: 1, Username: "a@b.com", Firstname: "Ann", Lastname: "Lee"},
				Token: "signed-token",
			}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/users/login",
			bytes.NewBufferString(`{"username":"a@b.com","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "signed-token", resp.Token)
		assert.True(t, resp.Success)
		assert.Equal(t, "a@b.com", resp.User.Username)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Wrong Credentials", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/users/login", handler.Login)

		mockUsecase.On("Login", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewUnauthorizedError("wrong username or password"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/users/login",
			bytes.NewBufferString(`{"username":"a@b.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "wrong username or password", resp["error"])
		assert.NotContains(t, resp, "token")
	})

	t.Run("Missing Fields", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/users/login", handler.Login)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/users/login", bytes.NewBufferString(`{"username":"a@b.com"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		u := &domain.User{ID: 1, Username: "a@b.com", PasswordHash: "hash", Firstname: "Ann", Lastname: "Lee"}
		r.GET("/users/profile", asAuthenticated(u), handler.GetProfile)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users/profile", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.NotContains(t, w.Body.String(), "hash")
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("No Resolved User", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.GET("/users/profile", handler.GetProfile)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users/profile", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/users/:id", handler.GetUser)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 7}).
			Return(&usecase.GetUserResponse{
				User: usecase.User{ID: 7, Username: "b@c.com", Firstname: "Bob", Lastname: "Ray"},
			}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users/7", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.GET("/users/:id", handler.GetUser)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users/abc", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/users/:id", handler.GetUser)

		mockUsecase.On("GetUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewNotFoundError("user", "user not found: id=99"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users/99", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("Partial Body Produces Nil Fields", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		u := &domain.User{ID: 1, Username: "a@b.com"}
		r.PATCH("/users/profile", asAuthenticated(u), handler.UpdateProfile)

		mockUsecase.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(req usecase.UpdateProfileRequest) bool {
			// ID comes from the gate; only firstname was supplied
			return req.ID == 1 && req.Firstname != nil && *req.Firstname == "Anna" &&
				req.Lastname == nil && req.Phone == nil
		})).Return(&usecase.UpdateProfileResponse{
			User: usecase.User{ID: 1, Username: "a@b.com", Firstname: "Anna", Lastname: "Lee"},
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/users/profile", bytes.NewBufferString(`{"firstname":"Anna"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Shape Violation", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		u := &domain.User{ID: 1, Username: "a@b.com"}
		r.PATCH("/users/profile", asAuthenticated(u), handler.UpdateProfile)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/users/profile", bytes.NewBufferString(`{"firstname":"An"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteProfile(t *testing.T) {
	r, handler, mockUsecase := setupTest(t)
	u := &domain.User{ID: 1, Username: "a@b.com"}
	r.DELETE("/users/profile", asAuthenticated(u), handler.DeleteProfile)

	mockUsecase.On("DeleteProfile", mock.Anything, usecase.DeleteProfileRequest{ID: 1}).
		Return(&usecase.DeleteProfileResponse{ID: 1}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/users/profile", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user removed successfully", resp.Message)
}

func TestListUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Query: "", Page: 2, Limit: 5}).
			Return(&usecase.ListUsersResponse{
				Users: []usecase.User{
					{ID: 6, Username: "f@example.com", Firstname: "Fay", Lastname: "Orr"},
				},
				Pagination: &usecase.Pagination{Total: 6, Page: 2, Limit: 5, TotalPages: 2},
			}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users?page=2&limit=5", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ListUsersResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Users, 1)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(2), resp.Pagination.TotalPages)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Bad Query", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("query", "search query contains invalid characters"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/users?query=%3Cscript%3E", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
