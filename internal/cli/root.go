package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shirt-tracker/splitbuild/internal/branding"
	"github.com/shirt-tracker/splitbuild/internal/config"
	"github.com/shirt-tracker/splitbuild/internal/logging"
	"github.com/shirt-tracker/splitbuild/internal/verify"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	projectDir string
	logger     = zap.NewNop()
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Project root to operate on")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` is built from one shared stylesheet and script into two
single-file documents: a desktop variant under /d/ and a mobile variant under /m/.

Run "build" to assemble both variants and "verify" to check the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}
		if err := config.Load(root); err != nil {
			return err
		}
		l, err := logging.New(config.LogLevel(), config.LogFormat())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// projectRoot returns the absolute project directory.
func projectRoot() (string, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return "", fmt.Errorf("resolving project directory %s: %w", projectDir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("project directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", root)
	}
	return root, nil
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	var failed *verify.FailedError
	if err != nil && !errors.As(err, &failed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
