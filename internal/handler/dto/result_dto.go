package dto

import (
	"time"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
)

// SubmitResultRequest - запись завершенной попытки.
// user_id можно не передавать, тогда берется ID вызывающего.
type SubmitResultRequest struct {
	UserID         uint `json:"user_id"`
	AssessmentID   uint `json:"assessment_id" binding:"required"`
	CorrectAnswers *int `json:"correct_answers" binding:"required"`
	TotalQuestions *int `json:"total_questions" binding:"required"`
	TimeTaken      int  `json:"time_taken"`
}

// UpdateResultRequest - исправление числовых полей попытки
type UpdateResultRequest struct {
	CorrectAnswers *int `json:"correct_answers" binding:"required"`
	TotalQuestions *int `json:"total_questions" binding:"required"`
	TimeTaken      int  `json:"time_taken"`
}

// ResultResponse представляет попытку в ответе клиенту
type ResultResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title,omitempty"`
	Score           float64   `json:"score"`
	CorrectAnswers  int       `json:"correct_answers"`
	TotalQuestions  int       `json:"total_questions"`
	TimeTaken       int       `json:"time_taken"`
	CreatedAt       time.Time `json:"created_at"`
}

// PaginatedResultResponse представляет страницу истории попыток
type PaginatedResultResponse struct {
	Results []ResultResponse `json:"results"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// NewResultResponse создает DTO для попытки
func NewResultResponse(r *entity.Result) ResultResponse {
	resp := ResultResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		AssessmentID:   r.AssessmentID,
		Score:          r.Score,
		CorrectAnswers: r.CorrectAnswers,
		TotalQuestions: r.TotalQuestions,
		TimeTaken:      r.TimeTaken,
		CreatedAt:      r.CreatedAt,
	}
	if r.Assessment != nil {
		resp.AssessmentTitle = r.Assessment.Title
	}
	return resp
}

// NewResultResponses создает DTO для списка попыток
func NewResultResponses(results []entity.Result) []ResultResponse {
	out := make([]ResultResponse, 0, len(results))
	for i := range results {
		out = append(out, NewResultResponse(&results[i]))
	}
	return out
}

// UserScoreResponse - глобальный балл пользователя
type UserScoreResponse struct {
	UserID             uint      `json:"user_id"`
	GlobalScore        float64   `json:"global_score"`
	TotalAssessments   int       `json:"total_assessments"`
	TotalCorrect       int       `json:"total_correct"`
	TotalQuestions     int       `json:"total_questions"`
	AccuracyPercentage float64   `json:"accuracy_percentage"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewUserScoreResponse создает DTO для агрегата
func NewUserScoreResponse(s *entity.UserScore) UserScoreResponse {
	return UserScoreResponse{
		UserID:             s.UserID,
		GlobalScore:        s.GlobalScore,
		TotalAssessments:   s.TotalAssessments,
		TotalCorrect:       s.TotalCorrect,
		TotalQuestions:     s.TotalQuestions,
		AccuracyPercentage: s.AccuracyPercentage(),
		UpdatedAt:          s.UpdatedAt,
	}
}
