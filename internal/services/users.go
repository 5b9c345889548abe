package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

const maxSearchResults = 10

type UserService struct {
	db    *gorm.DB
	clock Clock
}

func NewUserService(db *gorm.DB, clock Clock) *UserService {
	return &UserService{db: db, clock: clock}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if !usernamePattern.MatchString(req.Username) {
		return nil, validationErrorf("username must be 3-30 letters, digits, '-' or '_'")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, validationErrorf("a valid email is required")
	}
	if len(req.Password) < 6 {
		return nil, validationErrorf("password must be at least 6 characters")
	}

	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("username or email already registered: %w", ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	logging.WithContext(ctx).WithField("username", user.Username).Info("User registered")
	return &user, nil
}

// Login checks the credentials and records the login time. Unknown email and
// wrong password produce the same ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationErrorf("email and password are required")
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	now := s.clock.Now()
	user.LastLogin = &now
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user "+username)
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user "+id.String())
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	for col, v := range map[string]*int{"age": req.Age, "height": req.Height, "weight": req.Weight} {
		if v == nil {
			continue
		}
		if *v < 0 {
			return nil, validationErrorf("%s must not be negative", col)
		}
		updates[col] = *v
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Theme != nil {
		if !req.Theme.IsValid() {
			return nil, validationErrorf("invalid theme selection")
		}
		updates["theme"] = *req.Theme
	}

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		res := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
	}
	return s.GetByID(ctx, userID)
}

func (s *UserService) SetTheme(ctx context.Context, userID uuid.UUID, theme models.Theme) (*models.User, error) {
	return s.UpdateProfile(ctx, userID, models.UpdateProfileRequest{Theme: &theme})
}

func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", url)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return s.GetByID(ctx, userID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search does a case-insensitive substring match on usernames. LIKE wildcards
// in the query match literally.
func (s *UserService) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	results := []models.UserSummary{}
	if query == "" {
		return results, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(query)+"%").
		Order("username ASC").
		Limit(maxSearchResults).
		Find(&users).Error; err != nil {
		return nil, err
	}

	for _, u := range users {
		results = append(results, models.UserSummary{
			Username: u.Username,
			Level:    u.Progression.Level,
			Theme:    u.Theme,
		})
	}
	return results, nil
}
