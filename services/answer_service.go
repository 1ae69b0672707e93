package services

import (
	"context"
	"errors"
	"fmt"

	"belajarbahasa/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const createBatchSize = 500

// Live feed event types.
const (
	EventAnswerCreated    = "answer_created"
	EventAnswersSubmitted = "answers_submitted"
)

// AnswerPublisher receives answers once they are stored.
type AnswerPublisher interface {
	PublishToUser(userID, eventType string, payload interface{})
}

type AnswerService struct {
	db        *gorm.DB
	publisher AnswerPublisher
}

// NewAnswerService creates the answer service. publisher may be nil.
func NewAnswerService(db *gorm.DB, publisher AnswerPublisher) *AnswerService {
	return &AnswerService{
		db:        db,
		publisher: publisher,
	}
}

// CreateAnswerRequest is one submitted answer. Pointer fields are required
// but may legitimately hold zero values.
type CreateAnswerRequest struct {
	UserID   string          `json:"userId"`
	Session  *int            `json:"session"`
	Language models.Language `json:"language" binding:"omitempty,language"`
	Title    models.Title    `json:"title" binding:"omitempty,title"`
	Type     models.Type     `json:"type" binding:"omitempty,qtype"`
	Material models.Material `json:"material" binding:"omitempty,material"`
	Number   *int            `json:"number"`
	Answer   *bool           `json:"answer"`
}

type CreateAnswersRequest struct {
	Answers []CreateAnswerRequest `json:"answers" binding:"dive"`
}

func (r *CreateAnswerRequest) validate() error {
	switch {
	case r.UserID == "":
		return validationError("userId is required")
	case r.Session == nil:
		return validationError("session is required")
	case r.Number == nil:
		return validationError("number is required")
	case r.Answer == nil:
		return validationError("answer is required")
	case !r.Language.Valid():
		return validationError("Invalid language %q", r.Language)
	case !r.Title.Valid():
		return validationError("Invalid title %q", r.Title)
	case !r.Type.Valid():
		return validationError("Invalid type %q", r.Type)
	case !r.Material.Valid():
		return validationError("Invalid material %q", r.Material)
	}
	return nil
}

func (r *CreateAnswerRequest) toModel() models.QuestionAnswer {
	return models.QuestionAnswer{
		UserID:        r.UserID,
		Session:       *r.Session,
		Language:      r.Language,
		QuestionTitle: r.Title,
		QuestionType:  r.Type,
		QuestionMat:   r.Material,
		Number:        *r.Number,
		Answer:        *r.Answer,
	}
}

func (s *AnswerService) CreateOne(ctx context.Context, req *CreateAnswerRequest) (*models.QuestionAnswer, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	answer := req.toModel()
	if err := s.db.WithContext(ctx).Create(&answer).Error; err != nil {
		return nil, translateAnswerWriteError(err)
	}

	s.publish(answer.UserID, EventAnswerCreated, answer)
	return &answer, nil
}

// AnswersSubmittedEvent is sent to each user present in a bulk submission.
// Submitted counts that user's rows; BatchInserted counts new rows across the
// whole batch, since skipped duplicates are not reported per row.
type AnswersSubmittedEvent struct {
	Submitted     int   `json:"submitted"`
	BatchInserted int64 `json:"batchInserted"`
}

// CreateMany inserts answers in bulk. Rows identical to an existing row are
// skipped by the store; the returned count covers new rows only.
func (s *AnswerService) CreateMany(ctx context.Context, reqs []CreateAnswerRequest) (int64, error) {
	if len(reqs) == 0 {
		return 0, validationError("Payload must include non-empty 'answers' array")
	}

	rows := make([]models.QuestionAnswer, 0, len(reqs))
	submitted := make(map[string]int)
	for i := range reqs {
		if err := reqs[i].validate(); err != nil {
			return 0, validationError("answers[%d]: %s", i, err.Error())
		}
		rows = append(rows, reqs[i].toModel())
		submitted[reqs[i].UserID]++
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, createBatchSize)
	if result.Error != nil {
		return 0, translateAnswerWriteError(result.Error)
	}

	for userID, n := range submitted {
		s.publish(userID, EventAnswersSubmitted, AnswersSubmittedEvent{
			Submitted:     n,
			BatchInserted: result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}

func (s *AnswerService) FindAll(ctx context.Context) ([]models.QuestionAnswer, error) {
	return s.findMany(ctx, "No question answers found", func(db *gorm.DB) *gorm.DB {
		return db
	})
}

func (s *AnswerService) FindByID(ctx context.Context, id string) (*models.QuestionAnswer, error) {
	var answer models.QuestionAnswer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Question answer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find question answer %s: %w", id, err)
	}
	return &answer, nil
}

func (s *AnswerService) FindByUser(ctx context.Context, userID string) ([]models.QuestionAnswer, error) {
	answers, err := s.HistoryForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, notFound("No question answers found for this user")
	}
	return answers, nil
}

func (s *AnswerService) FindBySession(ctx context.Context, session int) ([]models.QuestionAnswer, error) {
	return s.findMany(ctx, "No question answers found for this session", func(db *gorm.DB) *gorm.DB {
		return db.Where("session = ?", session)
	})
}

func (s *AnswerService) FindByLanguage(ctx context.Context, language models.Language) ([]models.QuestionAnswer, error) {
	if !language.Valid() {
		return nil, validationError("Invalid language %q", language)
	}
	return s.findMany(ctx, "No question answers found for this language", func(db *gorm.DB) *gorm.DB {
		return db.Where("language = ?", language)
	})
}

// HistoryForUser returns every answer of a user in history order. An empty
// result is not an error.
func (s *AnswerService) HistoryForUser(ctx context.Context, userID string) ([]models.QuestionAnswer, error) {
	var answers []models.QuestionAnswer
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("find answers for user %s: %w", userID, err)
	}
	return OrderHistory(answers), nil
}

// FindByUserAndLanguage returns a user's answers in one language ordered by
// question slot. An empty result is not an error.
func (s *AnswerService) FindByUserAndLanguage(ctx context.Context, userID string, language models.Language) ([]models.QuestionAnswer, error) {
	if !language.Valid() {
		return nil, validationError("Invalid language %q", language)
	}

	var answers []models.QuestionAnswer
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND language = ?", userID, language).
		Order("question_type, question_title, number, id").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("find %s answers for user %s: %w", language, userID, err)
	}
	return OrderLanguageSlots(answers), nil
}

func (s *AnswerService) findMany(ctx context.Context, emptyMessage string, scope func(*gorm.DB) *gorm.DB) ([]models.QuestionAnswer, error) {
	var answers []models.QuestionAnswer
	if err := s.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at, id").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("find question answers: %w", err)
	}
	if len(answers) == 0 {
		return nil, notFound(emptyMessage)
	}
	return answers, nil
}

func (s *AnswerService) publish(userID, eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToUser(userID, eventType, payload)
}

func translateAnswerWriteError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return validationError("Answer already recorded")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return validationError("User does not exist")
	}
	return fmt.Errorf("create question answers: %w", err)
}
