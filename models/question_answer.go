package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionAnswer is one recorded answer. Rows are never updated or deleted.
//
// The unique index spans every user-supplied column so that a bulk insert
// with conflicts ignored drops exact duplicates. QuestionMat is stored as
// NOT NULL with '' for "no material" so that two absent materials compare
// equal inside the index.
type QuestionAnswer struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	UserID        string    `json:"userId" gorm:"size:36;not null;index;uniqueIndex:idx_answer_slot,priority:1"`
	Session       int       `json:"session" gorm:"not null;index;uniqueIndex:idx_answer_slot,priority:2"`
	Language      Language  `json:"language" gorm:"size:32;not null;index;uniqueIndex:idx_answer_slot,priority:3"`
	QuestionTitle Title     `json:"questionTitle" gorm:"size:32;not null;uniqueIndex:idx_answer_slot,priority:4"`
	QuestionType  Type      `json:"questionType" gorm:"size:32;not null;uniqueIndex:idx_answer_slot,priority:5"`
	QuestionMat   Material  `json:"questionMat,omitempty" gorm:"size:32;not null;uniqueIndex:idx_answer_slot,priority:6"`
	Number        int       `json:"number" gorm:"not null;uniqueIndex:idx_answer_slot,priority:7"`
	Answer        bool      `json:"answer" gorm:"not null;uniqueIndex:idx_answer_slot,priority:8"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (a *QuestionAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Migrate creates or updates the tables for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &QuestionAnswer{})
}
