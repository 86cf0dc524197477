package entity

import (
	"time"
)

// Assessment представляет оценочный тест (каталог, только чтение для ядра)
type Assessment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	Difficulty  int        `gorm:"not null;default:1" json:"difficulty"`  // 1..5
	TimeLimit   int        `gorm:"not null;default:60" json:"time_limit"` // в секундах
	Questions   []Question `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Assessment) TableName() string {
	return "assessments"
}

// Question представляет вопрос теста. Order уникален в рамках теста.
type Question struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssessmentID uint      `gorm:"not null;uniqueIndex:idx_question_assessment_order" json:"assessment_id"`
	Text         string    `gorm:"size:500;not null" json:"text"`
	Order        int       `gorm:"column:order;not null;default:1;uniqueIndex:idx_question_assessment_order" json:"order"`
	Options      []Option  `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// Option представляет вариант ответа
type Option struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"size:300;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"-"` // Скрыто от клиента
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Option) TableName() string {
	return "options"
}

// FindOption ищет вариант ответа среди вариантов вопроса
func (q *Question) FindOption(optionID uint) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i], true
		}
	}
	return nil, false
}
