package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/assettrack/internal/auth/app"
	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/service"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password with the configured pepper",
		Long: "Reads a password (without echo on a terminal, or one line from stdin) " +
			"and prints the stored credential form.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			cryptox.SetPepperPath(cfg.PepperFile)

			pw, err := getPassword(cmd.InOrStdin(), int(os.Stdin.Fd()), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			hash, err := cryptox.HashPassword(pw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

func newDisableMFACmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable-mfa <username>",
		Short: "Turn off MFA for a user who lost their authenticator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, db *sqlite.Store) error {
				u, err := lookupUser(ctx, db, args[0])
				if err != nil {
					return err
				}

				mfa := &service.MFAService{Store: db}
				if err := mfa.AdminDisable(ctx, u.ID); err != nil {
					if errors.Is(err, service.ErrMFANotEnabled) {
						return fmt.Errorf("user %q does not have MFA enabled", u.Username)
					}
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "MFA disabled for %s\n", u.Username)
				return err
			})
		},
	}
}

func newResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Replace a user's password with a generated one",
		Long: "Generates a temporary password, stores its hash and flags the account " +
			"so the user must choose a new password at next login.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, db *sqlite.Store) error {
				u, err := lookupUser(ctx, db, args[0])
				if err != nil {
					return err
				}

				temp, err := cryptox.GeneratePassword()
				if err != nil {
					return err
				}
				hash, err := cryptox.HashPassword(temp)
				if err != nil {
					return err
				}
				if err := db.Users().SetPassword(ctx, u.ID, hash, true); err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Temporary password for %s: %s\n", u.Username, temp)
				return err
			})
		},
	}
}

// withStore opens the configured database for a maintenance command.
func withStore(ctx context.Context, fn func(ctx context.Context, db *sqlite.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := app.LoadConfig()
	cryptox.SetPepperPath(cfg.PepperFile)

	db, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(ctx, db)
}

func lookupUser(ctx context.Context, db *sqlite.Store, username string) (domain.User, error) {
	u, err := db.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("user %q not found", username)
	}
	return u, err
}
