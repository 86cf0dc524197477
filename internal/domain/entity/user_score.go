package entity

import (
	"time"

	"github.com/yourusername/skillcert-api/internal/domain/scoring"
)

// UserScore - производный агрегат по всем результатам пользователя.
// Никогда не редактируется напрямую, только пересчитывается.
// TotalAssessments == 0 означает "нет данных", а не 0%.
type UserScore struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	GlobalScore      float64   `gorm:"not null;default:0" json:"global_score"`
	TotalAssessments int       `gorm:"not null;default:0" json:"total_assessments"`
	TotalCorrect     int       `gorm:"not null;default:0" json:"total_correct"`
	TotalQuestions   int       `gorm:"not null;default:0" json:"total_questions"`
	Strengths        *string   `gorm:"type:text" json:"strengths"`
	Weaknesses       *string   `gorm:"type:text" json:"weaknesses"`
	Recommendations  *string   `gorm:"type:text" json:"recommendations"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserScore) TableName() string {
	return "user_scores"
}

// HasData сообщает, есть ли у пользователя хотя бы один результат
func (s *UserScore) HasData() bool {
	return s.TotalAssessments > 0
}

// AccuracyPercentage - доля правильных ответов по всем попыткам.
// Формула та же, что и у GlobalScore.
func (s *UserScore) AccuracyPercentage() float64 {
	return scoring.RatioScore(s.TotalCorrect, s.TotalQuestions)
}
