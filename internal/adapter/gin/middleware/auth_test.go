package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "user-account-service/internal/domain/user"
	pkgerrors "user-account-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubVerifier struct {
	userID int64
	err    error
}

func (s stubVerifier) Verify(token string) (int64, error) {
	return s.userID, s.err
}

// MockRepository is a mock implementation of user.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func setupAuthTest(t *testing.T, verifier TokenVerifier, repo *MockRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authentication(verifier, repo, zaptest.NewLogger(t)))
	r.GET("/protected", func(c *gin.Context) {
		u, ok := UserFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	return r
}

func TestAuthentication(t *testing.T) {
	t.Run("Missing Header", func(t *testing.T) {
		repo := new(MockRepository)
		r := setupAuthTest(t, stubVerifier{}, repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Wrong Scheme", func(t *testing.T) {
		repo := new(MockRepository)
		r := setupAuthTest(t, stubVerifier{}, repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid Token Never Hits Store", func(t *testing.T) {
		repo := new(MockRepository)
		r := setupAuthTest(t, stubVerifier{err: pkgerrors.ErrUnauthorized}, repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Deleted User", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(42)).
			Return(nil, pkgerrors.NewNotFoundError("user", "user not found: id=42"))
		r := setupAuthTest(t, stubVerifier{userID: 42}, repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer valid-for-42")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Success Resolves User", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(42)).
			Return(&domain.User{ID: 42, Username: "a@b.com"}, nil)
		r := setupAuthTest(t, stubVerifier{userID: 42}, repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer valid-for-42")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":42`)
		repo.AssertExpectations(t)
	})
}
