package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/schemasync/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the engine connection settings stored in config.toml.

Keys:
  engine                     solr or embedded
  solr.url                   base URL, e.g. http://localhost:8983/solr
  solr.collection            collection whose schema is managed
  solr.username              basic auth user
  solr.password              basic auth password (use 'config password')
  solr.token                 bearer token, replaces basic auth
  solr.timeout_seconds       per-request timeout
  solr.requests_per_second   request rate limit, 0 for none
  embedded.seed              schema document seeding the embedded engine`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if settingsService == nil {
			return errSettingsNotConfigured
		}
		if err := settingsService.Set(args[0], args[1]); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Set " + args[0]))
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if settingsService == nil {
			return errSettingsNotConfigured
		}
		if err := settingsService.Unset(args[0]); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Unset " + args[0]))
		return nil
	},
}

var configPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Prompt for and store the basic auth password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errSettingsNotConfigured
		}
		cmd.Print("Password: ")
		password := readPassword()
		cmd.Println()
		if password == "" {
			return errors.New("password must not be empty")
		}
		if err := settingsService.Set(services.KeySolrPassword, password); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Password saved."))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPasswordCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(titleStyle.Render("Current Configuration"))
	cmd.Println()
	cmd.Printf("  Engine: %s\n", settings.Engine.Description())
	cmd.Println()

	cmd.Println("[Solr]")
	cmd.Printf("  URL: %s\n", settings.Solr.URL)
	cmd.Printf("  Collection: %s\n", settings.Solr.Collection)
	switch {
	case settings.Solr.Token != "":
		cmd.Printf("  Auth: bearer token %s\n", maskSecret(settings.Solr.Token))
	case settings.Solr.Username != "":
		password := "(not set)"
		if settings.Solr.Password != "" {
			password = maskSecret(settings.Solr.Password)
		}
		cmd.Printf("  Auth: basic, user %s, password %s\n", settings.Solr.Username, password)
	default:
		cmd.Println("  Auth: none")
	}
	cmd.Printf("  Timeout: %ds\n", settings.Solr.TimeoutSeconds)
	if settings.Solr.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.Solr.RequestsPerSecond)
	} else {
		cmd.Println("  Rate limit: none")
	}
	cmd.Println()

	cmd.Println("[Embedded]")
	seed := settings.Embedded.Seed
	if seed == "" {
		seed = "(bundled example schema)"
	}
	cmd.Printf("  Seed: %s\n", seed)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Warning: %v", err)))
	} else {
		cmd.Println(successStyle.Render("Configuration is valid."))
	}
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
