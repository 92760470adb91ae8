package user

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"user-account-service/internal/auth"
	domain "user-account-service/internal/domain/user"
	pkgerrors "user-account-service/pkg/errors"
	"user-account-service/pkg/security"

	"github.com/go-playground/validator/v10"
)

// wrongCredentialsMsg is the single message returned for both an unknown
// username and a wrong password, so responses do not reveal which one failed.
const wrongCredentialsMsg = "wrong username or password"

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, SQLite) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)                        // Create a new user
	GetByID(ctx context.Context, id int64) (*domain.User, error)                      // Retrieve user by ID
	GetByUsername(ctx context.Context, username string) (*domain.User, error)         // Retrieve user by login email, nil when absent
	Update(ctx context.Context, u *domain.User) (int64, error)                        // Update existing user
	Delete(ctx context.Context, id int64) (int64, error)                              // Delete user by ID
	List(ctx context.Context, query string, page, limit int64) ([]domain.User, error) // List users with pagination and search
	Count(ctx context.Context, query string) (int64, error)                           // Count users matching the search
}

// TokenIssuer issues a signed session token for a user ID.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Service implements the business logic for user account operations.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo       Repository          // Repository for data access
	tokens     TokenIssuer         // Session token issuer
	bcryptCost int                 // Cost used when hashing new passwords
	log        *zap.Logger         // Logger for structured logging
	validate   *validator.Validate // Validator for request validation
}

// New creates a new instance of Service with the provided repository,
// token issuer, bcrypt cost, and logger.
func New(r Repository, tokens TokenIssuer, bcryptCost int, log *zap.Logger) *Service {
	return &Service{repo: r, tokens: tokens, bcryptCost: bcryptCost, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return err
}

// toDTO projects a domain user into the response shape. The password hash
// never crosses this boundary.
func toDTO(u *domain.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Phone:     u.Phone,
	}
}

// Register creates a new user account. Username uniqueness is ultimately
// guaranteed by the store's unique index; the lookup here only produces a
// friendlier error for the common non-racing case.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error) {
	s.log.Info("registering user", zap.String("username", in.Username))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := s.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		s.log.Error("failed to check existing username", zap.String("username", in.Username), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to validate username uniqueness", err)
	}
	if existing != nil {
		s.log.Warn("username already exists", zap.String("username", in.Username))
		return nil, pkgerrors.NewAlreadyExistsError("user", "Email already exists")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to hash password", err)
	}

	u := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Phone:        in.Phone,
	}

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	u.ID = id

	return &RegisterResponse{User: toDTO(u)}, nil
}

// Login authenticates a user by username and password and issues a session
// token. The token is issued strictly after the password check succeeds, and
// an unknown username is indistinguishable from a wrong password.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := s.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		s.log.Error("failed to look up user for login", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to look up user", err)
	}
	if u == nil {
		s.log.Warn("login for unknown username", zap.String("username", in.Username))
		return nil, pkgerrors.NewUnauthorizedError(wrongCredentialsMsg)
	}

	if !auth.CheckPassword(in.Password, u.PasswordHash) {
		s.log.Warn("login with wrong password", zap.Int64("user_id", u.ID))
		return nil, pkgerrors.NewUnauthorizedError(wrongCredentialsMsg)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.log.Error("failed to issue token", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to issue token", err)
	}

	s.log.Info("user logged in", zap.Int64("user_id", u.ID))
	return &LoginResponse{User: toDTO(u), Token: token}, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	if in.ID <= 0 {
		s.log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewValidationError("id", "invalid user id")
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		s.log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &GetUserResponse{User: toDTO(u)}, nil
}

// UpdateProfile applies a partial update to the authenticated user's record.
// Fields left nil in the request keep their stored values. The target row is
// always the authenticated user's own, never an ID from the request body.
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*UpdateProfileResponse, error) {
	s.log.Info("updating profile", zap.Int64("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		s.log.Error("failed to load user for update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	if in.Firstname != nil {
		u.Firstname = *in.Firstname
	}
	if in.Lastname != nil {
		u.Lastname = *in.Lastname
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}

	if _, err := s.repo.Update(ctx, u); err != nil {
		s.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &UpdateProfileResponse{User: toDTO(u)}, nil
}

// DeleteProfile removes the authenticated user's account.
func (s *Service) DeleteProfile(ctx context.Context, in DeleteProfileRequest) (*DeleteProfileResponse, error) {
	s.log.Info("deleting profile", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		s.log.Warn("delete profile validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewValidationError("id", "invalid user id")
	}

	id, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		s.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &DeleteProfileResponse{ID: id}, nil
}

// ListUsers retrieves a paginated list of users with optional search.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}
	if in.Limit > 100 {
		in.Limit = 100
	}

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		s.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewValidationError("query", err.Error())
	}

	s.log.Info("listing users", zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	total, err := s.repo.Count(ctx, query)
	if err != nil {
		s.log.Error("failed to count users", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	domainUsers, err := s.repo.List(ctx, query, in.Page, in.Limit)
	if err != nil {
		s.log.Error("failed to list users", zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit), zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = toDTO(&domainUsers[i])
	}

	p := domain.NewPagination(total, in.Page, in.Limit)

	return &ListUsersResponse{
		Users: users,
		Pagination: &Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}
