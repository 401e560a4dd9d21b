package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/install-release/ir/internal/config"
	"github.com/install-release/ir/internal/state"
)

func newListCmd(o *options) *cobra.Command {
	var heldOnly bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List installed tools",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			records := a.tools.List(heldOnly)
			if len(records) == 0 {
				if heldOnly {
					fmt.Fprintln(o.out, "No tools are on hold.")
				} else {
					fmt.Fprintln(o.out, "No tools installed.")
					fmt.Fprintln(o.out)
					fmt.Fprintln(o.out, "To install one:")
					fmt.Fprintln(o.out, "  ir get https://github.com/junegunn/fzf")
				}
				return nil
			}
			title := "Installed tools"
			if heldOnly {
				title = "Tools on hold"
			}
			fmt.Fprintln(o.out, renderTable(title, []string{"Name", "Version", "Method", "Url"}, listRows(records)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&heldOnly, "hold", false, "only list tools on hold")
	return cmd
}

func listRows(records []state.ToolRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		version := r.TagName
		if r.HoldUpdate {
			version += " " + holdMarker
		}
		method := string(r.Method())
		if r.PackageType != "" {
			method += " (" + r.PackageType + ")"
		}
		rows = append(rows, []string{r.Name, version, method, r.URL})
	}
	return rows
}

func newRemoveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Uninstall a tool and forget it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := o.lockedApp(cmd)
			if err != nil {
				return err
			}
			defer release()
			rec, err := a.tools.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(o.out, SuccessStyle.Render(fmt.Sprintf("Removed %s %s", rec.Name, rec.TagName)))
			return nil
		},
	}
}

func newHoldCmd(o *options) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "hold NAME",
		Short: "Keep a tool at its installed version during upgrades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := o.lockedApp(cmd)
			if err != nil {
				return err
			}
			defer release()
			rec, err := a.tools.Hold(args[0], !unset)
			if err != nil {
				return err
			}
			if rec.HoldUpdate {
				fmt.Fprintf(o.out, "%s is on hold at %s\n", rec.Name, rec.TagName)
			} else {
				fmt.Fprintf(o.out, "%s will be upgraded again\n", rec.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "take the tool off hold")
	return cmd
}

func newStateCmd(o *options) *cobra.Command {
	var asLua bool

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the state file",
		Long: `Print the state file as JSON, which "ir pull --file" accepts on
another machine, or with --lua as a manifest for "ir apply".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			if asLua {
				manifest := config.NewGenerator().Generate(a.store.All())
				fmt.Fprint(o.out, manifest)
				if warning := config.FormatSensitiveDataWarning(config.DetectSensitiveData(manifest)); warning != "" {
					fmt.Fprint(o.errOut, WarningStyle.Render(warning))
				}
				return nil
			}
			data, err := json.MarshalIndent(a.store.All(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal state: %w", err)
			}
			fmt.Fprintln(o.out, string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asLua, "lua", false, "print a Lua manifest instead of JSON")
	return cmd
}

func newConfigCmd(o *options) *cobra.Command {
	var update config.ToolConfig

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change settings. Without flags the effective settings are
printed, tokens masked. Tokens can also come from IR_TOKEN, GITHUB_TOKEN,
IR_GITLAB_TOKEN and GITLAB_TOKEN; those are never written to the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.appFor(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			changed := flags.Changed("token") || flags.Changed("gitlab-token") ||
				flags.Changed("path") || flags.Changed("pre-release")
			if !changed {
				printSettings(o, a.paths, *a.settings)
				return nil
			}

			stored, err := config.ReadFile(a.paths.ConfigFile)
			if err != nil {
				return err
			}
			if flags.Changed("token") {
				stored.Token = update.Token
			}
			if flags.Changed("gitlab-token") {
				stored.GitlabToken = update.GitlabToken
			}
			if flags.Changed("path") {
				stored.Path = update.Path
			}
			if flags.Changed("pre-release") {
				stored.PreRelease = update.PreRelease
			}
			if err := config.Save(a.paths.ConfigFile, stored); err != nil {
				return err
			}
			fmt.Fprintln(o.out, SuccessStyle.Render("Saved "+a.paths.ConfigFile))
			printSettings(o, a.paths, *stored)
			return nil
		},
	}

	cmd.Flags().StringVar(&update.Token, "token", "", "GitHub token, raises the API rate limit")
	cmd.Flags().StringVar(&update.GitlabToken, "gitlab-token", "", "GitLab token")
	cmd.Flags().StringVar(&update.Path, "path", "", "directory binaries are installed into")
	cmd.Flags().BoolVar(&update.PreRelease, "pre-release", false, "consider pre-releases when installing and upgrading")
	return cmd
}

func printSettings(o *options, paths config.Paths, cfg config.ToolConfig) {
	masked := cfg.Masked()
	rows := [][]string{
		{"token", masked.Token},
		{"gitlab_token", masked.GitlabToken},
		{"path", paths.InstallDir(&cfg)},
		{"pre_release", fmt.Sprint(cfg.PreRelease)},
		{"state", paths.StateFile},
	}
	fmt.Fprintln(o.out, renderTable("Settings", []string{"Key", "Value"}, rows))
}

func newPlatformCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show what ir detected about this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			distro := "-"
			if d := a.info.GetDistro(); d != nil {
				distro = strings.TrimSpace(d.ID + " " + d.Version + " (" + d.Family + ")")
			}
			packageType := a.packageType
			if packageType == "" {
				packageType = "-"
			}
			rows := [][]string{
				{"os", a.sig.OS},
				{"arch", a.info.Arch},
				{"word size", a.sig.WordSize},
				{"arch aliases", strings.Join(a.sig.ArchAliases, ", ")},
				{"glibc", fmt.Sprint(a.sig.Glibc)},
				{"distro", distro},
				{"package type", packageType},
			}
			fmt.Fprintln(o.out, renderTable("Platform", []string{"Key", "Value"}, rows))
			return nil
		},
	}
}
