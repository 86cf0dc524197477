package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/skillcert-api/internal/domain/entity"
	pgRepo "github.com/yourusername/skillcert-api/internal/repository/postgres"
	"github.com/yourusername/skillcert-api/internal/service"
)

type userCreator interface {
	CreateUser(input service.CreateUserInput) (*entity.User, error)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage platform users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with the given role",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := service.CreateUserInput{}
		input.Username, _ = cmd.Flags().GetString("username")
		input.Email, _ = cmd.Flags().GetString("email")
		input.Password, _ = cmd.Flags().GetString("password")
		input.FirstName, _ = cmd.Flags().GetString("first-name")
		input.LastName, _ = cmd.Flags().GetString("last-name")
		input.Role, _ = cmd.Flags().GetString("role")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}

		// Токены здесь не выпускаются, JWT-сервис не нужен
		authService := service.NewAuthService(pgRepo.NewUserRepo(db), nil)
		return createUser(cmd, authService, input)
	},
}

func createUser(cmd *cobra.Command, users userCreator, input service.CreateUserInput) error {
	user, err := users.CreateUser(input)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user #%d %s <%s> role=%s\n", user.ID, user.Username, user.Email, user.Role)
	return nil
}

func init() {
	userCreateCmd.Flags().String("username", "", "Unique username")
	userCreateCmd.Flags().String("email", "", "Unique email address")
	userCreateCmd.Flags().String("password", "", "Initial password (min 8 characters)")
	userCreateCmd.Flags().String("first-name", "", "First name")
	userCreateCmd.Flags().String("last-name", "", "Last name")
	userCreateCmd.Flags().String("role", entity.RoleAprendiz, "Role: admin, empresa or aprendiz")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
}
