package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-account-service/internal/domain/user"
	pkgerrors "user-account-service/pkg/errors"
	"user-account-service/pkg/security"
)

// UserRepoPG implements the Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
// The unique index on username is what guarantees uniqueness; the friendly
// existence check in the usecase is only there for a better error message.
type UserSchema struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Firstname    string `gorm:"not null"`
	Lastname     string `gorm:"not null"`
	Phone        string
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (s *UserSchema) toDomain() *user.User {
	return &user.User{
		ID:           s.ID,
		Username:     s.Username,
		PasswordHash: s.PasswordHash,
		Firstname:    s.Firstname,
		Lastname:     s.Lastname,
		Phone:        s.Phone,
	}
}

// Create inserts a new user into the database. A unique-index violation on
// username is reported as an AlreadyExistsError, which closes the
// check-then-insert race under concurrent registrations.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Firstname:    u.Firstname,
		Lastname:     u.Lastname,
		Phone:        u.Phone,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Warn("duplicate username on insert", zap.String("username", u.Username))
			return 0, pkgerrors.NewAlreadyExistsError("user", "Email already exists")
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("username", u.Username))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update updates an existing user in the database.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Firstname:    u.Firstname,
		Lastname:     u.Lastname,
		Phone:        u.Phone,
	}

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return 0, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, errors.New("invalid user id")
	}

	if err := r.db.WithContext(ctx).Delete(&UserSchema{}, id).Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return id, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByUsername retrieves a user from the database by their login email.
// Returns nil without error when no user exists with that username.
func (r *UserRepoPG) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by username", zap.String("username", username))
			return nil, nil
		}
		r.log.Error("failed to get user by username from db", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return model.toDomain(), nil
}

// List retrieves users from the database with pagination and search functionality.
func (r *UserRepoPG) List(ctx context.Context, query string, page, limit int64) ([]user.User, error) {
	var models []UserSchema
	q := r.db.WithContext(ctx).Model(&UserSchema{})
	if query != "" {
		pattern := "%" + security.SanitizeSearchString(query) + "%"
		q = q.Where("username LIKE ? OR firstname LIKE ? OR lastname LIKE ?", pattern, pattern, pattern)
	}
	if err := q.Order("id").Offset(int((page - 1) * limit)).Limit(int(limit)).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", query), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, nil
}

// Count returns the number of users matching the search query.
func (r *UserRepoPG) Count(ctx context.Context, query string) (int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&UserSchema{})
	if query != "" {
		pattern := "%" + security.SanitizeSearchString(query) + "%"
		q = q.Where("username LIKE ? OR firstname LIKE ? OR lastname LIKE ?", pattern, pattern, pattern)
	}
	if err := q.Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err), zap.String("query", query))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return total, nil
}
