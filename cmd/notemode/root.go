package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/monodeaf/notemode/internal/config"
	"github.com/monodeaf/notemode/internal/platform"
)

var (
	verbose  bool
	cfgFile  string
	envFile  string
	vault    string
	adapter  string
	userID   string
	idToken  string
	readOnly bool
	asJSON   bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notemode",
	Short: "Groups, notes and writing statistics from the terminal",
	Long: `notemode keeps notes in named groups for one user at a time.
Snapshots are stored in a local vault (JSON/YAML files or SQLite) or in
Firebase, and activity statistics are derived from note creation times.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		flags := cmd.Flags()
		var root string
		if !flags.Changed("vault") {
			if found, err := platform.FindRoot("."); err == nil {
				root = found
			}
		}
		file := cfgFile
		if file == "" && root != "" {
			file = platform.ConfigFile(root)
		}

		loaded, err := config.Load(file, envFile)
		if err != nil {
			return err
		}
		switch {
		case flags.Changed("vault"):
			loaded.Vault = vault
		case root != "" && !filepath.IsAbs(loaded.Vault):
			loaded.Vault = filepath.Join(root, loaded.Vault)
			slog.Debug("vault root found", "root", root)
		}
		if flags.Changed("adapter") {
			loaded.Adapter = adapter
		}
		if flags.Changed("user") {
			loaded.User = userID
		}
		if flags.Changed("read-only") {
			loaded.ReadOnly = readOnly
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./notemode.yaml when present)")
	flags.StringVar(&envFile, "env-file", "", "Dotenv file (default ./.env when present)")
	flags.StringVar(&vault, "vault", ".", "Vault directory (default: nearest parent holding notemode.yaml, .notemode.yaml or .notemode)")
	flags.StringVar(&adapter, "adapter", "fs", "Storage adapter: fs, sqlite, firebase, firestore or memory")
	flags.StringVarP(&userID, "user", "u", "", "User id")
	flags.StringVar(&idToken, "id-token", "", "Firebase ID token; its uid becomes the user")
	flags.BoolVar(&readOnly, "read-only", false, "Never write snapshots")
	flags.BoolVar(&asJSON, "json", false, "Output in JSON format")
}
