// Command hash-generator prints bcrypt hashes for seeding users directly in
// the database.
package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cost   int
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "hash-generator <password>...",
		Short: "Generate bcrypt hashes for passwords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, password := range args {
				if strict {
					if problems := domain.PasswordProblems(password); len(problems) > 0 {
						return fmt.Errorf("rejected password: %s", problems[0])
					}
				}
				hash, err := hashPassword(password, cost)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, hash)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&cost, "cost", "c", 12, "bcrypt cost factor (4-31)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject passwords the API would refuse at registration")

	return cmd
}

func hashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
