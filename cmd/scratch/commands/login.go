package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/scratch-client/internal/auth"
	"github.com/fivetwenty-io/scratch-client/pkg/scratchclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Scratch",
		Long:  "Authenticate with the Scratch website and save the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := sessionStore()
			authenticator := auth.NewAuthenticator(
				scratchclient.NormalizeEndpoint(viper.GetString("site"), ""),
				commandLogger(cmd),
			)
			prompter := &auth.TerminalPrompter{
				In:       cmd.InOrStdin(),
				Out:      cmd.ErrOrStderr(),
				Username: username,
			}

			if force {
				session, err := authenticator.PromptLogin(cmd.Context(), prompter)
				if err != nil {
					return err
				}

				if err := store.Save(session); err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.Username)

				return nil
			}

			session, err := authenticator.LoginOrRestore(cmd.Context(), store, prompter)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.Username)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when omitted)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "log in again even if a saved session exists")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of Scratch",
		Long:  "Remove the saved session file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sessionStore().Clear(); err != nil {
				return fmt.Errorf("failed to remove session: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}

// NewWhoAmICommand creates the whoami command.
func NewWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Long:  "Display the username of the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := sessionStore().Load()
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), session.Username)

			return nil
		},
	}
}
