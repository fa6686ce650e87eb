package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/proveritus/estatecloud/internal/user/model"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/logger"
	"github.com/proveritus/estatecloud/pkg/pagination"
)

// SignUpInput carries the fields of a self-service registration.
type SignUpInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role,omitempty"`
}

// UserInput carries the writable fields of a user for admin create/update.
type UserInput struct {
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	Password              string     `json:"password,omitempty"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	Role                  model.Role `json:"role"`
	Enabled               *bool      `json:"enabled,omitempty"`
	AccountNonExpired     *bool      `json:"account_non_expired,omitempty"`
	AccountNonLocked      *bool      `json:"account_non_locked,omitempty"`
	CredentialsNonExpired *bool      `json:"credentials_non_expired,omitempty"`
}

// UserService owns user accounts and authentication.
type UserService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewUserService creates a UserService on db with a short-lived read cache
// for id and username lookups.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:    db,
		cache: cache.New(2*time.Minute, 5*time.Minute),
	}
}

// Register creates a self-service account. The role defaults to VIEWER when
// absent or unknown.
func (s *UserService) Register(ctx context.Context, input SignUpInput) (*model.User, error) {
	log := logger.FromContext(ctx)
	log.Info("Registering user", zap.String("username", input.Username))

	if err := s.validateNew(ctx, input.Username, input.Email, input.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	role := model.Role(strings.ToUpper(input.Role))
	if !role.Valid() {
		role = model.RoleViewer
	}

	user := model.User{
		Username:              input.Username,
		Email:                 input.Email,
		Password:              string(hashed),
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Role:                  role,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	log.Debug("User registered", zap.Uint("id", user.ID))
	return &user, nil
}

// Authenticate verifies credentials against username or email and returns
// the matching account.
func (s *UserService) Authenticate(ctx context.Context, usernameOrEmail, password string) (*model.User, error) {
	log := logger.FromContext(ctx)

	var user model.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", usernameOrEmail, usernameOrEmail).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Warn("Sign-in for unknown account", zap.String("username_or_email", usernameOrEmail))
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	if !user.Enabled || !user.AccountNonLocked {
		log.Warn("Sign-in for disabled or locked account", zap.Uint("id", user.ID))
		return nil, apperr.Unauthorized("account is disabled or locked")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Warn("Sign-in with wrong password", zap.Uint("id", user.ID))
		return nil, apperr.Unauthorized("invalid credentials")
	}

	return &user, nil
}

// GetByID returns one user, served from cache when possible.
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	key := idKey(id)
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.User), nil
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	s.cacheUser(&user)
	return &user, nil
}

// GetByUsername returns one user, served from cache when possible.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	key := usernameKey(username)
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.User), nil
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user not found with username: %s", username)
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	s.cacheUser(&user)
	return &user, nil
}

// GetByIDs returns the users matching ids. IDs with no matching user are
// silently omitted.
func (s *UserService) GetByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	return users, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, p pagination.Pageable) (pagination.Page[model.User], error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return pagination.Page[model.User]{}, apperr.Internal("failed to count users", err)
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Scopes(p.Scope()).Order("id").Find(&users).Error; err != nil {
		return pagination.Page[model.User]{}, apperr.Internal("failed to list users", err)
	}

	return pagination.NewPage(users, p, total), nil
}

// Create adds a user on behalf of an administrator.
func (s *UserService) Create(ctx context.Context, input UserInput) (*model.User, error) {
	log := logger.FromContext(ctx)
	log.Info("Creating user", zap.String("username", input.Username))

	if err := s.validateNew(ctx, input.Username, input.Email, input.Password); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperr.Invalid("invalid user", "invalid role")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := model.User{
		Username:              input.Username,
		Email:                 input.Email,
		Password:              string(hashed),
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Role:                  input.Role,
		Enabled:               boolOr(input.Enabled, true),
		AccountNonExpired:     boolOr(input.AccountNonExpired, true),
		AccountNonLocked:      boolOr(input.AccountNonLocked, true),
		CredentialsNonExpired: boolOr(input.CredentialsNonExpired, true),
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	log.Debug("User created", zap.Uint("id", user.ID))
	return &user, nil
}

// Update changes a user's profile, role, and account flags. The username and
// password are not updatable through this path.
func (s *UserService) Update(ctx context.Context, id uint, input UserInput) (*model.User, error) {
	log := logger.FromContext(ctx)
	log.Info("Updating user", zap.Uint("id", id))

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	if input.Email != "" && input.Email != user.Email {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.User{}).
			Where("email = ? AND id <> ?", input.Email, id).Count(&count).Error; err != nil {
			return nil, apperr.Internal("failed to check email", err)
		}
		if count > 0 {
			return nil, apperr.Duplicate("email address already in use")
		}
		user.Email = input.Email
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	if input.Role.Valid() {
		user.Role = input.Role
	}
	user.Enabled = boolOr(input.Enabled, user.Enabled)
	user.AccountNonExpired = boolOr(input.AccountNonExpired, user.AccountNonExpired)
	user.AccountNonLocked = boolOr(input.AccountNonLocked, user.AccountNonLocked)
	user.CredentialsNonExpired = boolOr(input.CredentialsNonExpired, user.CredentialsNonExpired)

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}

	s.evictUser(&user)
	log.Debug("User updated", zap.Uint("id", id))
	return &user, nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	log := logger.FromContext(ctx)
	log.Info("Deleting user", zap.Uint("id", id))

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.NotFound("user not found with id: %d", id)
		}
		return apperr.Internal("failed to load user", err)
	}

	if err := s.db.WithContext(ctx).Delete(&user).Error; err != nil {
		return apperr.Internal("failed to delete user", err)
	}

	s.evictUser(&user)
	log.Debug("User deleted", zap.Uint("id", id))
	return nil
}

func (s *UserService) validateNew(ctx context.Context, username, email, password string) error {
	var details []string
	if strings.TrimSpace(username) == "" {
		details = append(details, "username is required")
	}
	if strings.TrimSpace(email) == "" {
		details = append(details, "email is required")
	}
	if len(password) < 6 {
		details = append(details, "password must be at least 6 characters")
	}
	if len(details) > 0 {
		return apperr.Invalid("invalid user", details...)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return apperr.Internal("failed to check username", err)
	}
	if count > 0 {
		return apperr.Duplicate("username is already taken")
	}

	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return apperr.Internal("failed to check email", err)
	}
	if count > 0 {
		return apperr.Duplicate("email address already in use")
	}

	return nil
}

func (s *UserService) cacheUser(user *model.User) {
	s.cache.SetDefault(idKey(user.ID), user)
	s.cache.SetDefault(usernameKey(user.Username), user)
}

func (s *UserService) evictUser(user *model.User) {
	s.cache.Delete(idKey(user.ID))
	s.cache.Delete(usernameKey(user.Username))
}

func idKey(id uint) string {
	return "id:" + strconv.FormatUint(uint64(id), 10)
}

func usernameKey(username string) string {
	return "username:" + username
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
