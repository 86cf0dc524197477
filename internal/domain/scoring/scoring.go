// Package scoring содержит чистые функции подсчета баллов и уровней компетенции.
//
// Здесь намеренно две разные метрики:
//   - RatioScore: сумма правильных / сумма вопросов * 100 (глобальный балл пользователя);
//   - MeanScore: среднее арифметическое процентов по попыткам (балл для выдачи сертификата).
//
// Их нельзя объединять: разные пути вызова опираются на разные числа.
package scoring

import (
	"github.com/shopspring/decimal"
)

// Precision - количество знаков после запятой для всех баллов
const Precision = 2

// Round2 округляет значение до 2 знаков (half away from zero) через decimal,
// чтобы пороги уровней давали детерминированный результат.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(Precision).Float64()
	return f
}

// PercentScore вычисляет процент правильных ответов одной попытки.
// При totalQuestions <= 0 возвращает 0.
func PercentScore(correctAnswers, totalQuestions int) float64 {
	if totalQuestions <= 0 {
		return 0
	}
	ratio := decimal.NewFromInt(int64(correctAnswers)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(totalQuestions)))
	f, _ := ratio.Round(Precision).Float64()
	return f
}

// RatioScore - глобальный балл: totalCorrect / totalQuestions * 100.
// Формула совпадает с PercentScore, но применяется к суммам по всем попыткам.
func RatioScore(totalCorrect, totalQuestions int) float64 {
	return PercentScore(totalCorrect, totalQuestions)
}

// MeanScore - среднее арифметическое баллов попыток, округленное до 2 знаков.
// Для пустого набора возвращает 0.
func MeanScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(decimal.NewFromFloat(s))
	}
	f, _ := sum.Div(decimal.NewFromInt(int64(len(scores)))).Round(Precision).Float64()
	return f
}
