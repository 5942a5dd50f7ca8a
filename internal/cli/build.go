package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shirt-tracker/splitbuild/internal/assemble"
	"github.com/shirt-tracker/splitbuild/internal/config"
	"github.com/shirt-tracker/splitbuild/internal/watch"
)

var buildWatch bool

func init() {
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "Rebuild when sources change")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble the desktop and mobile variants",
	Long: `Build both platform variants into apps/web-root.

Each variant gets the shared stylesheet with the other platform's blocks
removed, the shared script with its placeholders resolved, and both merged
into a single index.html after minification. Routing rules, the auth
redirect page and, when present, the native desktop shell are written last.

With --watch the build reruns whenever the shared sources or a shell change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := assemble.New(root, logger)
		a.DeployDate = config.DeployDate()
		out := cmd.OutOrStdout()

		if !buildWatch {
			res, err := a.Build(ctx)
			if err != nil {
				return err
			}
			printBuild(out, a, res)
			return nil
		}

		debounce, err := config.WatchDebounce()
		if err != nil {
			return err
		}
		build := func(ctx context.Context) error {
			res, err := a.Build(ctx)
			if err != nil {
				return err
			}
			printBuild(out, a, res)
			return nil
		}
		if err := build(ctx); err != nil {
			logger.Error("initial build failed", zap.Error(err))
		}

		fmt.Fprintf(out, "Watching %s for changes (Ctrl-C to stop)\n", root)
		return watch.New(a.Layout, build, debounce, logger).Run(ctx)
	},
}

func printBuild(w io.Writer, a *assemble.Assembler, res *assemble.Result) {
	fmt.Fprintf(w, "Built version %s in %s\n", res.Version, res.Duration.Round(time.Millisecond))
	for _, v := range res.Variants {
		fmt.Fprintf(w, "  %-8s %s\n", v.Platform, a.Layout.Rel(v.Dir))
	}
	fmt.Fprintf(w, "  %-8s %s\n", "routing", a.Layout.Rel(res.Redirects))
	if res.NativeSynced {
		fmt.Fprintf(w, "  %-8s %s\n", "native", a.Layout.Rel(a.Layout.NativeShellSrc()))
	}
}
