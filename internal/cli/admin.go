package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/weddingplanner/internal/auth"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/database/settings"
	"github.com/mrlokans/weddingplanner/internal/database/users"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

func newCreateAdminCommand(dbPath *string) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Creates a local administrator account. The password is read from
standard input when --password is not given.

Example:
  weddingplanner create-admin --username ada --email ada@example.com < password.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required: pass --password or pipe it on stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			e, err := openEnv(cmd, *dbPath)
			if err != nil {
				return err
			}
			defer e.Close()

			service := auth.NewService(users.NewRepository(e.db.DB), settings.NewRepository(e.db.DB), e.cfg.Auth)
			user, err := service.CreateUser(username, email, password, entities.UserRoleAdmin)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			e.events.LogAdmin(user.ID, "admin_create", user.ID, map[string]any{"source": "cli"})

			fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s (id %d)\n", user.Username, user.ID)
			if e.cfg.Auth.Mode != config.AuthModeLocal {
				fmt.Fprintln(cmd.OutOrStdout(), "Note: set AUTH_MODE=local to require login")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password; read from stdin when empty")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
