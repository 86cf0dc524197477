package scoring

// Level - уровень компетенции 0..5
type Level int

// Уровни компетенции
const (
	LevelUncertified Level = 0
	LevelNovice      Level = 1
	LevelApprentice  Level = 2
	LevelCompetent   Level = 3
	LevelAdvanced    Level = 4
	LevelExpert      Level = 5
)

// levelThreshold - нижняя граница балла для уровня
type levelThreshold struct {
	MinScore float64
	Level    Level
}

// thresholds упорядочены по убыванию, первое совпадение выигрывает
var thresholds = []levelThreshold{
	{MinScore: 90, Level: LevelExpert},
	{MinScore: 75, Level: LevelAdvanced},
	{MinScore: 60, Level: LevelCompetent},
	{MinScore: 40, Level: LevelApprentice},
	{MinScore: 20, Level: LevelNovice},
}

var levelLabels = map[Level]string{
	LevelUncertified: "Uncertified",
	LevelNovice:      "Novice",
	LevelApprentice:  "Apprentice",
	LevelCompetent:   "Competent",
	LevelAdvanced:    "Advanced",
	LevelExpert:      "Expert",
}

// LevelForScore возвращает наибольший уровень, порог которого не превышает балл.
// Балл предварительно округляется до 2 знаков.
func LevelForScore(totalScore float64) Level {
	score := Round2(totalScore)
	for _, t := range thresholds {
		if score >= t.MinScore {
			return t.Level
		}
	}
	return LevelUncertified
}

// Label возвращает отображаемое название уровня
func (l Level) Label() string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return levelLabels[LevelUncertified]
}

// IsValid проверяет, что уровень в диапазоне 0..5
func (l Level) IsValid() bool {
	return l >= LevelUncertified && l <= LevelExpert
}
