package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jakexks/license-hound/pkg/checker"
	"github.com/jakexks/license-hound/pkg/config"
	"github.com/jakexks/license-hound/pkg/github"
	"github.com/jakexks/license-hound/pkg/lockfile"
	"github.com/jakexks/license-hound/pkg/metrics"
)

var (
	root = &cobra.Command{
		Use:   "license-hound",
		Short: "audit the licenses of Rust dependencies",
		Long: `Given a Cargo.lock, find the license text and copyright notice of every
dependency, and print them as a JSON report.

Dependencies must have been fetched beforehand with 'cargo fetch'.`,
		SilenceUsage: true,
	}
	check = &cobra.Command{
		Use:   "check [Cargo.lock]",
		Short: "audit every package of a lock file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "Cargo.lock"
			if len(args) == 1 {
				path = args[0]
			}
			lf, err := lockfile.Load(path)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), lf.Packages)
		},
	}
	pkgCmd = &cobra.Command{
		Use:   "package <name> [version]",
		Short: "audit the packages of a lock file with the given name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lf, err := lockfile.Load(viper.GetString("lockfile"))
			if err != nil {
				return err
			}
			var version string
			if len(args) == 2 {
				version = args[1]
			}
			pkgs := lf.Find(args[0], version)
			if len(pkgs) == 0 {
				return fmt.Errorf("no package %q in %s", args[0], viper.GetString("lockfile"))
			}
			return run(cmd.Context(), cmd.OutOrStdout(), pkgs)
		},
	}
)

func init() {
	cobra.OnInitialize(flagsFromEnv)

	f := root.PersistentFlags()
	f.BoolP(config.KeyDebug, "d", false, "Print debug logs, e.g. every request made to GitHub")
	f.String(config.KeyGitHubUsername, "", "GitHub user for authenticated requests, also $"+github.UsernameEnv)
	f.String(config.KeyGitHubPassword, "", "GitHub password or token, also $"+github.PasswordEnv)
	f.String(config.KeyGitHubBranch, github.DefaultBranch, "Branch raw license files are looked for in")
	f.String(config.KeyGitHubAPIURL, github.DefaultAPIBase, "GitHub API base URL")
	f.String(config.KeyGitHubRawURL, github.DefaultRawBase, "GitHub raw content base URL")
	f.Duration(config.KeyHTTPTimeout, 0, "Timeout of each GitHub request, 0 for none")
	f.Int(config.KeyCacheSize, github.DefaultCacheSize, "Number of GitHub responses kept in memory")
	f.String(config.KeyCargoHome, "", "Cargo home holding the fetched sources (default $CARGO_HOME or ~/.cargo)")
	f.String(config.KeyLicensesDir, "", "Directory of google/licenseclassifier licenses used to double check license files")
	f.IntP("jobs", "j", 1, "Number of packages audited in parallel")
	f.String("notices", "", "Also write the license texts to this file, e.g. LICENSES.txt")
	f.String("thirdparty", "", "Copy the sources of reciprocally licensed packages into this directory")
	f.String("metrics-textfile", "", "Write Prometheus metrics of the run to this file")

	pkgCmd.Flags().String("lockfile", "Cargo.lock", "Lock file to read the package from")
	_ = viper.BindPFlag("lockfile", pkgCmd.Flags().Lookup("lockfile"))

	root.AddCommand(check, pkgCmd)
	_ = viper.BindPFlags(f)
}

// flagsFromEnv allows flags to be set from environment variables, and from
// a .env file in the working directory.
func flagsFromEnv() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading .env: %v\n", err)
	}
	config.BindEnv(viper.GetViper())
}

func Execute() {
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// run audits pkgs and writes the JSON report to out. Failing packages are
// part of the report; only I/O failures are returned.
func run(ctx context.Context, out io.Writer, pkgs []lockfile.Package) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()
	chk, err := checker.New(cfg, log, m)
	if err != nil {
		return fmt.Errorf("while initializing license-hound: %w", err)
	}

	log.Infof("Auditing %d packages", len(pkgs))
	reports := chk.ChaseAll(ctx, pkgs, viper.GetInt("jobs"))
	for _, r := range reports {
		log.Debug(r.String())
	}
	logSummary(log, reports)

	if err := checker.WriteJSON(out, reports); err != nil {
		return fmt.Errorf("writing the report: %w", err)
	}

	if path := viper.GetString("notices"); path != "" {
		if err := writeNotices(path, reports); err != nil {
			return err
		}
		log.Infof("License texts written to %s", path)
	}

	if dst := viper.GetString("thirdparty"); dst != "" {
		copied, err := checker.CopyReciprocal(reports, dst)
		if err != nil {
			return err
		}
		for _, name := range copied {
			log.Infof("package %s: sources copied into %s due to its reciprocal license", name, dst)
		}
	}

	if path := viper.GetString("metrics-textfile"); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return err
		}
	}

	return nil
}

func writeNotices(path string, reports []checker.Report) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := checker.WriteNotices(f, reports); err != nil {
		return err
	}
	return f.Close()
}

func logSummary(log *zap.SugaredLogger, reports []checker.Report) {
	summary := checker.Summary(reports)
	failed := len(reports) - summary["ok"]
	if failed == 0 {
		log.Infof("All %d packages audited", len(reports))
		return
	}
	log.Warnf("%d of %d packages could not be audited: %v", failed, len(reports), summary)
	for _, r := range reports {
		if !r.Conclusion.OK() {
			log.Info(r.String())
		}
	}
}
