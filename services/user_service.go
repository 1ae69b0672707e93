package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"belajarbahasa/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const passwordCost = 10

type UserService struct {
	db      *gorm.DB
	answers *AnswerService
	cache   *UserCache
}

// NewUserService creates the user service. cache may be nil.
func NewUserService(db *gorm.DB, answers *AnswerService, cache *UserCache) *UserService {
	return &UserService{
		db:      db,
		answers: answers,
		cache:   cache,
	}
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest is a partial update; nil fields keep their stored value.
type UpdateUserRequest struct {
	TotalTrue    *int       `json:"totalTrue"`
	TotalFalse   *int       `json:"totalFalse"`
	LastActivity *time.Time `json:"lastActivity"`
}

type UserSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserDetail struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	TotalTrue    int        `json:"totalTrue"`
	TotalFalse   int        `json:"totalFalse"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity *time.Time `json:"lastActivity"`
}

type UserAnswers struct {
	UserID       string                  `json:"userId"`
	Username     string                  `json:"username"`
	TotalAnswers int                     `json:"totalAnswers"`
	Answers      []models.QuestionAnswer `json:"answers"`
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*UserSummary, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, validationError("Username is required")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", req.Username).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing > 0 {
		return nil, validationError("Username already exists")
	}

	user := models.User{Username: req.Username}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hashed := string(hash)
		user.Password = &hashed
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationError("Username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return toUserSummary(&user), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*UserDetail, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Printf("User cache read failed for %s: %v", id, err)
	} else if cached != nil {
		return cached, nil
	}

	version, versionErr := s.cache.Version(ctx, id)
	if versionErr != nil {
		log.Printf("User cache read failed for %s: %v", id, versionErr)
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := toUserDetail(user)
	if versionErr == nil {
		if err := s.cache.Set(ctx, detail, version); err != nil {
			log.Printf("User cache write failed for %s: %v", id, err)
		}
	}
	return detail, nil
}

// ListAll returns the users that have at least one recorded answer.
func (s *UserService) ListAll(ctx context.Context) ([]UserDetail, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM question_answers WHERE question_answers.user_id = users.id)").
		Order("users.created_at, users.id").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	details := make([]UserDetail, 0, len(users))
	for i := range users {
		details = append(details, *toUserDetail(&users[i]))
	}
	return details, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*UserSummary, error) {
	if req.Username == "" || req.Password == "" {
		return nil, validationError("Username and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", req.Username, err)
	}

	if user.Password == nil {
		return nil, unauthorized("Invalid password")
	}
	err = bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(req.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, unauthorized("Invalid password")
	}
	if err != nil {
		return nil, fmt.Errorf("verify password for %q: %w", req.Username, err)
	}

	return toUserSummary(&user), nil
}

// Update applies a partial update to the stored counters and activity time.
// Concurrent updates are last-writer-wins.
func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*UserDetail, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TotalTrue != nil {
		user.TotalTrue = *req.TotalTrue
	}
	if req.TotalFalse != nil {
		user.TotalFalse = *req.TotalFalse
	}
	if req.LastActivity != nil {
		user.LastActivity = req.LastActivity
	}

	if err := s.db.WithContext(ctx).Model(user).
		Select("total_true", "total_false", "last_activity").
		Updates(user).Error; err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Printf("User cache invalidation failed for %s: %v", id, err)
	}
	return toUserDetail(user), nil
}

// ListByLanguage returns users with answers in language. TotalTrue and
// TotalFalse are computed from that language's answers and do not reflect
// the stored counters.
func (s *UserService) ListByLanguage(ctx context.Context, language models.Language) ([]UserDetail, error) {
	if !language.Valid() {
		return nil, validationError("Invalid language %q", language)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM question_answers WHERE question_answers.user_id = users.id AND question_answers.language = ?)", language).
		Preload("Answers", "language = ?", language).
		Order("users.created_at, users.id").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users for %s: %w", language, err)
	}

	stats := FilterByLanguage(users, language)
	details := make([]UserDetail, 0, len(stats))
	for i := range stats {
		detail := toUserDetail(&stats[i].User)
		detail.TotalTrue = stats[i].Correct
		detail.TotalFalse = stats[i].Incorrect
		details = append(details, *detail)
	}
	return details, nil
}

// GetAnswersForUser lists a user's answers: the full history when language
// is empty, otherwise that language's answers by question slot.
func (s *UserService) GetAnswersForUser(ctx context.Context, id string, language models.Language) (*UserAnswers, error) {
	if language != "" && !language.Valid() {
		return nil, validationError("Invalid language %q", language)
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var answers []models.QuestionAnswer
	if language == "" {
		answers, err = s.answers.HistoryForUser(ctx, id)
	} else {
		answers, err = s.answers.FindByUserAndLanguage(ctx, id, language)
	}
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []models.QuestionAnswer{}
	}

	return &UserAnswers{
		UserID:       user.ID,
		Username:     user.Username,
		TotalAnswers: len(answers),
		Answers:      answers,
	}, nil
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &user, nil
}

func toUserSummary(u *models.User) *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

func toUserDetail(u *models.User) *UserDetail {
	return &UserDetail{
		ID:           u.ID,
		Username:     u.Username,
		TotalTrue:    u.TotalTrue,
		TotalFalse:   u.TotalFalse,
		CreatedAt:    u.CreatedAt,
		LastActivity: u.LastActivity,
	}
}
