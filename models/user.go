package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User counters are only ever written through explicit updates; they are
// not derived from the user's answers.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	Password     *string    `json:"-"`
	TotalTrue    int        `json:"totalTrue" gorm:"not null;default:0"`
	TotalFalse   int        `json:"totalFalse" gorm:"not null;default:0"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity *time.Time `json:"lastActivity"`

	// Relationships
	Answers []QuestionAnswer `json:"answers,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
