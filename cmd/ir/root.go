package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/install-release/ir/internal/config"
	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/platform"
	"github.com/install-release/ir/internal/service"
	"github.com/install-release/ir/internal/state"
)

// options carries the process streams, the global flags and the
// collaborators tests replace. The app is built from it once per run.
type options struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	verbose bool
	quiet   bool

	detector  platform.Detector
	prober    platform.LibcProber
	providers service.ProviderFactory

	app *app
}

func newOptions(in io.Reader, out, errOut io.Writer) *options {
	return &options{in: in, out: out, errOut: errOut}
}

func (o *options) level() logging.Level {
	switch {
	case o.verbose:
		return logging.LevelVerbose
	case o.quiet:
		return logging.LevelQuiet
	default:
		return logging.LevelNormal
	}
}

// appFor returns the app, building it on first use.
func (o *options) appFor(cmd *cobra.Command) (*app, error) {
	if o.app != nil {
		return o.app, nil
	}
	a, err := newApp(cmd.Context(), o)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

// lockedApp returns the app holding the state lock, with the store reread
// under it. The caller runs release when done.
func (o *options) lockedApp(cmd *cobra.Command) (a *app, release func(), err error) {
	a, err = o.appFor(cmd)
	if err != nil {
		return nil, nil, err
	}
	lock, err := state.AcquireLock(cmd.Context(), a.paths.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	release = func() {
		if err := lock.Release(); err != nil {
			a.logger.Warn("release lock", "err", err)
		}
	}
	if err := a.store.Load(); err != nil {
		release()
		return nil, nil, err
	}
	return a, release, nil
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "ir",
		Short: "Install command line tools from GitHub and GitLab releases",
		Long: TitleStyle.Render("ir") + SubtitleStyle.Render(" - install-release") + `

ir picks the release asset that fits this machine, installs it and keeps
track of what it installed so tools can be upgraded later.

` + SubtitleStyle.Render("Examples:") + `
  ir get https://github.com/BurntSushi/ripgrep
  ir get https://github.com/cli/cli -n gh --package
  ir upgrade
  ir ls --hold`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(o.in)
	root.SetOut(o.out)
	root.SetErr(o.errOut)

	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&o.quiet, "quiet", "q", false, "only print errors")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		newGetCmd(o),
		newUpgradeCmd(o),
		newListCmd(o),
		newRemoveCmd(o),
		newHoldCmd(o),
		newPullCmd(o),
		newApplyCmd(o),
		newConfigCmd(o),
		newStateCmd(o),
		newPlatformCmd(o),
	)
	return root
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, o *options, args []string) int {
	root := newRootCmd(o)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, service.ErrDeclined):
		fmt.Fprintln(o.out, WarningStyle.Render("Cancelled, nothing was changed."))
		return 0
	default:
		fmt.Fprintln(o.errOut, ErrorStyle.Render("Error: ")+config.FormatError(err, o.verbose))
		return 1
	}
}
