package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pgRepo "github.com/yourusername/skillcert-api/internal/repository/postgres"
	"github.com/yourusername/skillcert-api/internal/service"
)

type certVerifier interface {
	Verify(certificateID string) (*service.VerificationResult, error)
}

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Inspect issued certifications",
}

var certVerifyCmd = &cobra.Command{
	Use:   "verify <certificate_id>",
	Short: "Print the validity snapshot of a certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}

		certService := service.NewCertificationService(
			pgRepo.NewCertificationRepo(db),
			pgRepo.NewResultRepo(db),
			pgRepo.NewUserRepo(db),
			nil,
			nil,
			nil,
			cfg.Email.VerifyURL,
		)
		return verifyCertificate(cmd.OutOrStdout(), certService, args[0])
	},
}

func verifyCertificate(out io.Writer, certs certVerifier, certificateID string) error {
	res, err := certs.Verify(certificateID)
	if err != nil {
		return fmt.Errorf("certificate %s: %w", certificateID, err)
	}

	expires := "never"
	if res.ExpiresAt != nil {
		expires = res.ExpiresAt.Format("2006-01-02")
	}
	fmt.Fprintf(out, "Certificate:  %s\n", res.CertificateID)
	fmt.Fprintf(out, "Holder:       %s (%s)\n", res.UserFullName, res.Username)
	fmt.Fprintf(out, "Title:        %s\n", res.Title)
	fmt.Fprintf(out, "Level:        %d %s\n", res.Level, res.LevelDisplay)
	fmt.Fprintf(out, "Score:        %.2f\n", res.TotalScore)
	fmt.Fprintf(out, "Status:       %s\n", res.StatusDisplay)
	fmt.Fprintf(out, "Issued:       %s\n", res.IssuedAt.Format("2006-01-02"))
	fmt.Fprintf(out, "Expires:      %s\n", expires)
	fmt.Fprintf(out, "Valid:        %t\n", res.IsValid)
	return nil
}

func init() {
	certCmd.AddCommand(certVerifyCmd)
}
