package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/install-release/ir/internal/remote"
	"github.com/install-release/ir/internal/service"
)

func newGetCmd(o *options) *cobra.Command {
	var req service.InstallRequest

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Install a release, picking the asset for this machine",
		Example: `  ir get https://github.com/junegunn/fzf
  ir get https://github.com/cli/cli -t v2.40.0 -n gh
  ir get https://gitlab.com/gitlab-org/cli -a glab_1.36.0_Linux_x86_64.tar.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := o.lockedApp(cmd)
			if err != nil {
				return err
			}
			defer release()
			req.URL = args[0]
			rec, err := a.installer.Install(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(o.out, SuccessStyle.Render(fmt.Sprintf("Installed %s %s", rec.Name, rec.TagName)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Tag, "tag", "t", "", "install a specific tag")
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "tool name, for releases that ship several tools")
	cmd.Flags().StringVarP(&req.AssetName, "asset", "a", "", "asset filename to match exactly")
	cmd.Flags().StringSliceVarP(&req.Words, "words", "w", nil, "extra words to match in asset names, kept for upgrades")
	cmd.Flags().BoolVarP(&req.Package, "package", "p", false, "install the native package (deb, rpm or AppImage)")
	cmd.Flags().BoolVar(&req.Hold, "hold", false, "hold the tool at this version")
	cmd.Flags().BoolVarP(&req.Approve, "approve", "y", false, "install without asking")
	return cmd
}

func newUpgradeCmd(o *options) *cobra.Command {
	var req service.PlanRequest

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade every installed tool that has a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := o.lockedApp(cmd)
			if err != nil {
				return err
			}
			defer release()
			plan, err := a.planner.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}
			printFailures(o.errOut, "check failed", plan.Failures)
			if len(plan.Upgrades) == 0 {
				fmt.Fprintln(o.out, "Everything is up to date.")
				return nil
			}

			res, err := a.planner.Apply(cmd.Context(), plan)
			if err != nil {
				return err
			}
			printFailures(o.errOut, "upgrade failed", res.Failures)
			fmt.Fprintln(o.out, SuccessStyle.Render(fmt.Sprintf("Upgraded %d of %d tools", len(res.Upgraded), len(plan.Upgrades))))
			if len(res.Failures) > 0 {
				return fmt.Errorf("%d upgrades failed", len(res.Failures))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&req.Force, "force", "F", false, "reinstall even when no newer release exists (held tools stay held)")
	cmd.Flags().BoolVarP(&req.SkipPrompt, "skip-prompt", "y", false, "upgrade without asking")
	return cmd
}

func newPullCmd(o *options) *cobra.Command {
	var (
		src        remote.Source
		override   bool
		skipPrompt bool
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Install the tools listed in a state file from elsewhere",
		Example: `  ir pull --url https://example.com/state.json
  ir pull --git https://github.com/me/dotfiles --path ir/state.json
  ir pull --file ./state.json -O`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := o.lockedApp(cmd)
			if err != nil {
				return err
			}
			defer release()
			doc, err := a.fetcher.FetchDocument(cmd.Context(), src)
			if err != nil {
				return err
			}
			res, err := a.merger.Merge(cmd.Context(), service.MergeRequest{Remote: doc, Override: override, SkipPrompt: skipPrompt})
			if err != nil {
				return err
			}
			return reportMerge(o, res)
		},
	}

	cmd.Flags().StringVar(&src.URL, "url", "", "http(s) URL of a state file")
	cmd.Flags().StringVar(&src.GitRepo, "git", "", "git repository holding a state file")
	cmd.Flags().StringVar(&src.GitPath, "path", "", "path of the state file inside the repository")
	cmd.Flags().StringVar(&src.GitRef, "ref", "", "branch or tag to read from")
	cmd.Flags().StringVar(&src.File, "file", "", "local state file")
	cmd.Flags().BoolVarP(&override, "override", "O", false, "reinstall tools whose local version differs")
	cmd.Flags().BoolVarP(&skipPrompt, "approve", "y", false, "install without asking")
	cmd.MarkFlagsMutuallyExclusive("url", "git", "file")
	cmd.MarkFlagsOneRequired("url", "git", "file")
	return cmd
}

func newApplyCmd(o *options) *cobra.Command {
	var (
		override   bool
		skipPrompt bool
	)

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Install the tools declared in a Lua manifest",
		Long: `Install the tools declared in a Lua manifest.

The manifest sets a global table named ir:

  ir = {
    tools = {
      "https://github.com/junegunn/fzf",
      { url = "https://github.com/cli/cli", name = "gh", words = { "linux" } },
      platform.when(platform.is_linux, { url = "https://github.com/sharkdp/bat", method = "package" }),
    },
  }

A read-only platform table describes the host. "ir state --lua" writes the
current state in this format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := o.lockedApp(cmd)
			if err != nil {
				return err
			}
			defer release()
			m, err := a.parser.ParseFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := a.merger.Merge(cmd.Context(), service.MergeRequest{Remote: m.ToDocument(), Override: override, SkipPrompt: skipPrompt})
			if err != nil {
				return err
			}
			return reportMerge(o, res)
		},
	}

	cmd.Flags().BoolVarP(&override, "override", "O", false, "reinstall tools whose local version differs")
	cmd.Flags().BoolVarP(&skipPrompt, "approve", "y", false, "install without asking")
	return cmd
}

func reportMerge(o *options, res *service.MergeResult) error {
	if len(res.Candidates) == 0 {
		fmt.Fprintln(o.out, "Nothing to install.")
		return nil
	}
	printFailures(o.errOut, "install failed", res.Failures)
	fmt.Fprintln(o.out, SuccessStyle.Render(fmt.Sprintf("Installed %d of %d tools", len(res.Installed), len(res.Candidates))))
	if len(res.Failures) > 0 {
		return fmt.Errorf("%d installs failed", len(res.Failures))
	}
	return nil
}

func printFailures(w io.Writer, what string, failures []service.Failure) {
	for _, f := range failures {
		fmt.Fprintln(w, WarningStyle.Render(what+": ")+f.Error())
	}
}
