// Package server provides server-related CLI commands.
package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_arv/internal/config"
	"github.com/andrei-cloud/go_arv/internal/provision"
	"github.com/andrei-cloud/go_arv/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the status code server",
		Long: `Start the TCP server that explains status words (EX), TPM statuses (TS)
and checks status registers against write-protect descriptors (WP).
When a policy is configured, WP requests may carry only the observed
register values. Send SIGHUP to reload the policy.`,
		Args:    cobra.NoArgs,
		PreRunE: bindServeFlags,
		RunE:    runServe,
	}

	// Add serve command specific flags that can override config.
	cmd.Flags().String("host", "localhost", "Server host")
	cmd.Flags().Int("port", 1600, "Server port")
	cmd.Flags().String("policy", "", "Policy file for WP requests without an NVRAM image")

	return cmd
}

// bindServeFlags binds the serve flags to the configuration loaded by the
// root command.
func bindServeFlags(cmd *cobra.Command, _ []string) error {
	v := config.GetViper()
	for key, flag := range map[string]string{
		"server.host": "host",
		"server.port": "port",
		"policy.path": "policy",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	return config.Refresh()
}

// loadPolicy returns nil when no policy is configured.
func loadPolicy(path string) (*provision.Policy, error) {
	if path == "" {
		return nil, nil
	}
	p, err := provision.Load(path)
	if err != nil {
		return nil, err
	}
	p.WithDefaultRootKeyHashes(config.Get().Verify.RootKeyHashes)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Get()

	policy, err := loadPolicy(cfg.Policy.Path)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}
	if policy != nil {
		log.Info().Str("policy", cfg.Policy.Path).Msg("policy loaded")
	}

	// Initialize the server with configured host and port.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv, err := server.NewServer(serverAddr, policy)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Reload the policy on SIGHUP.
	reloadChan := make(chan os.Signal, 1)
	signal.Notify(reloadChan, syscall.SIGHUP)
	defer signal.Stop(reloadChan)
	go func() {
		for range reloadChan {
			log.Info().Msg("reloading policy...")
			p, err := loadPolicy(cfg.Policy.Path)
			if err != nil {
				log.Error().Err(err).Msg("failed to reload policy, keeping the old one")
				continue
			}
			srv.SetPolicy(p)
			log.Info().Msg("policy reloaded")
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopChan)

	startErr := make(chan error, 1)
	go func() { startErr <- srv.Start() }()

	for {
		select {
		case err := <-startErr:
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			startErr = nil
		case <-stopChan:
			log.Info().Msg("shutting down server...")
			if err := srv.Stop(); err != nil {
				log.Error().Err(err).Msg("error during server shutdown")
			}

			return nil
		}
	}
}
