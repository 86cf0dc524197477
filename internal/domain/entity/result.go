package entity

import (
	"time"
)

// Result представляет одну попытку прохождения теста пользователем.
// Score всегда выводится из CorrectAnswers/TotalQuestions и хранится с точностью 2 знака.
type Result struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         uint        `gorm:"not null;index:idx_results_user_created,priority:1" json:"user_id"`
	AssessmentID   uint        `gorm:"not null;index:idx_results_assessment_score,priority:1" json:"assessment_id"`
	Score          float64     `gorm:"not null;default:0;index:idx_results_assessment_score,priority:2,sort:desc" json:"score"`
	CorrectAnswers int         `gorm:"not null;default:0" json:"correct_answers"`
	TotalQuestions int         `gorm:"not null;default:0" json:"total_questions"`
	TimeTaken      int         `gorm:"not null;default:0" json:"time_taken"` // в секундах
	Assessment     *Assessment `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
	CreatedAt      time.Time   `gorm:"index:idx_results_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Result) TableName() string {
	return "results"
}

// UserResultStats - агрегаты по результатам пользователя (AVG/MAX/MIN/SUM в SQL)
type UserResultStats struct {
	TotalAssessments int64
	AverageScore     float64
	BestScore        float64
	WorstScore       float64
	TotalTime        int64
	AverageTime      float64
}
