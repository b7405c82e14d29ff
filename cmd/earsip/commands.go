package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/logger"
	"github.com/straye-as/earsip/internal/service"
	"github.com/straye-as/earsip/internal/session"
	"go.uber.org/zap"
)

// cli carries the state shared by all commands of one invocation
type cli struct {
	loadConfig   func() (*config.Config, error)
	openServices func(cfg *config.Config, log *zap.Logger) (*service.Services, func(), error)

	cfg     *config.Config
	svc     *service.Services
	cleanup func()

	jsonOutput bool
	verbose    bool
}

func newCLI() *cli {
	return &cli{
		loadConfig:   config.Load,
		openServices: openServices,
	}
}

// openServices wires the façades with the token persisted in the token file
func openServices(cfg *config.Config, log *zap.Logger) (*service.Services, func(), error) {
	store, err := session.NewFileStore(cfg.Auth.TokenFile)
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.New(cfg, store, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, func() { _ = svc.Close() }, nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "earsip",
		Short:         "Operate the E-Arsip document archive from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			svc, cleanup, err := c.openServices(cfg, logger.NewCLILogger(c.verbose))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			c.cfg, c.svc, c.cleanup = cfg, svc, cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.cleanup != nil {
				c.cleanup()
			}
		},
	}

	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print machine-readable JSON")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log upstream calls")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newIncomingCmd(c),
		newOutgoingCmd(c),
		newCategoriesCmd(c),
		newDashboardCmd(c),
		newReportCmd(c),
	)
	return root
}

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("EARSIP_PASSWORD")
			}
			result, err := c.svc.Auth.Login(cmd.Context(), domain.LoginInput{Email: email, Password: password})
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result.User)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", result.User.Name, result.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "operator email")
	cmd.Flags().StringVar(&password, "password", "", "operator password (default $EARSIP_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.svc.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the operator the session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.svc.Auth.Me(cmd.Context())
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					return fmt.Errorf("not logged in, run 'earsip login' first")
				}
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}
