package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	pgRepo "github.com/yourusername/skillcert-api/internal/repository/postgres"
	"github.com/yourusername/skillcert-api/internal/service"
)

const recomputeBatchSize = 100

type userLister interface {
	List(limit, offset int) ([]entity.User, error)
}

type scoreRefresher interface {
	Refresh(userID uint) (*entity.UserScore, error)
}

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Maintain derived user score aggregates",
}

var scoresRecomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute global scores for one user (--user) or for everyone",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetUint("user")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}

		userRepo := pgRepo.NewUserRepo(db)
		scoreService := service.NewScoreService(
			pgRepo.NewResultRepo(db),
			pgRepo.NewUserScoreRepo(db),
			userRepo,
			openCache(cfg),
			nil,
			cfg.Scoring.StaleTTL(),
		)

		_, err = recomputeScores(cmd.OutOrStdout(), userRepo, scoreService, userID)
		return err
	},
}

// recomputeScores пересчитывает агрегаты и возвращает число обновленных пользователей.
// Ошибка одного пользователя не останавливает обход.
func recomputeScores(out io.Writer, users userLister, scores scoreRefresher, userID uint) (int, error) {
	if userID != 0 {
		score, err := scores.Refresh(userID)
		if err != nil {
			return 0, fmt.Errorf("user #%d: %w", userID, err)
		}
		printScore(out, score)
		return 1, nil
	}

	updated, failed := 0, 0
	for offset := 0; ; offset += recomputeBatchSize {
		batch, err := users.List(recomputeBatchSize, offset)
		if err != nil {
			return updated, fmt.Errorf("failed to list users: %w", err)
		}
		for _, u := range batch {
			score, err := scores.Refresh(u.ID)
			if err != nil {
				log.Printf("[skillsctl] Пересчет для пользователя %d не удался: %v", u.ID, err)
				failed++
				continue
			}
			printScore(out, score)
			updated++
		}
		if len(batch) < recomputeBatchSize {
			break
		}
	}

	fmt.Fprintf(out, "recomputed %d users, %d failed\n", updated, failed)
	if failed > 0 {
		return updated, fmt.Errorf("%d users failed to recompute", failed)
	}
	return updated, nil
}

func printScore(out io.Writer, score *entity.UserScore) {
	fmt.Fprintf(out, "user #%-6d  global=%6.2f  attempts=%d\n", score.UserID, score.GlobalScore, score.TotalAssessments)
}

func init() {
	scoresRecomputeCmd.Flags().Uint("user", 0, "Recompute only this user ID")
	scoresCmd.AddCommand(scoresRecomputeCmd)
}
