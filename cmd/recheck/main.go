package main

import (
	"fmt"
	"os"
	"time"

	"recheck-go/internal/app"
	"recheck-go/internal/config"
	"recheck-go/internal/recheck"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// exitCode is the status the process ends with after a clean command run.
// The check command uses it to signal "not due" without treating that as an
// error.
var exitCode int

// dataFile is the root --data-file override: a TOML store path that
// bypasses the configured backend.
var dataFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// newApp creates a wired App for one command run. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Check", "RecordCommit").
func newApp(operation string) (*app.App, error) {
	return app.New(operation, app.Options{DataFile: dataFile})
}

var rootCmd = &cobra.Command{
	Use:   "recheck",
	Short: "Probabilistic recheck scheduler for tracked resources",
	Long: `recheck decides whether a named resource is due for a recheck right now,
using a probability that grows the longer it has been since the last check
relative to how long the resource was stable before that check.`,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new host ID
		hostID := uuid.New().String()

		cfg := config.NewConfig(hostID, defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Store Type: %s\n", cfg.Store.Type)
		return nil
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Decide whether a resource should be rechecked now",
	Long: `Draws one biased coin flip and exits 0 when a recheck should run now,
1 otherwise. Unknown resources are always due; archived ones never are.
A non-empty --seed makes the draw reproducible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		seed, _ := cmd.Flags().GetString("seed")

		a, err := newApp("Check")
		if err != nil {
			return err
		}
		defer a.Close()

		due, err := a.Check(name, seed)
		if err != nil {
			return fmt.Errorf("checking %s: %w", name, err)
		}
		if !due {
			exitCode = 1
		}
		return nil
	},
}

// record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a commit for a resource",
	Long: `Creates or updates the record for a resource: the commit hash and time
overwrite the previous change state and the check time is reset to now.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		commitTime, _ := cmd.Flags().GetString("commit-time")
		commitHash, _ := cmd.Flags().GetString("commit-hash")

		t, err := time.Parse(time.RFC3339, commitTime)
		if err != nil {
			return fmt.Errorf("parsing commit time: %w", err)
		}
		h, err := recheck.ParseHash(commitHash)
		if err != nil {
			return fmt.Errorf("parsing commit hash: %w", err)
		}

		a, err := newApp("RecordCommit")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RecordCommit(name, t, h); err != nil {
			return fmt.Errorf("recording commit: %w", err)
		}

		fmt.Printf("Recorded %s @ %s\n", name, t.UTC().Format(time.RFC3339))
		return nil
	},
}

// summarise command
var summariseCmd = &cobra.Command{
	Use:   "summarise",
	Short: "Summarise record ages",
}

var summariseRepoAgeCmd = &cobra.Command{
	Use:   "repo-age",
	Short: "Bucket resources by time since last change",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SummarizeByChange")
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.SummarizeByChange()
		if err != nil {
			return err
		}
		printBuckets(counts)
		return nil
	},
}

var summariseCheckTimeCmd = &cobra.Command{
	Use:   "check-time",
	Short: "Bucket resources by time since last check",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SummarizeByCheck")
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.SummarizeByCheck()
		if err != nil {
			return err
		}
		printBuckets(counts)
		return nil
	},
}

func printBuckets(counts []recheck.BucketCount) {
	for _, c := range counts {
		fmt.Printf("%s: %d\n", c.Label, c.Count)
	}
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive a resource so checks skip it",
	Long: `Marks a resource as archived: check always reports not due and the
repo-age summary skips it. Use --clear to put it back in rotation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		unset, _ := cmd.Flags().GetBool("clear")

		a, err := newApp("SetArchived")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetArchived(name, !unset); err != nil {
			return err
		}

		if unset {
			fmt.Printf("Unarchived %s\n", name)
		} else {
			fmt.Printf("Archived %s\n", name)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.List()
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No resources tracked.")
			return nil
		}

		for _, e := range entries {
			indicator := " "
			if e.Record.Archived {
				indicator = "A"
			}
			fmt.Printf("%s %s  changed:%s  checked:%s  %s\n",
				indicator,
				e.Name,
				e.Record.ChangeTime.UTC().Format("2006-01-02 15:04:05"),
				e.Record.CheckTime.UTC().Format("2006-01-02 15:04:05"),
				e.Record.CommitHash.String()[:12],
			)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data-file", "d", "", "TOML store file to use instead of the configured backend")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// summarise subcommands
	summariseCmd.AddCommand(summariseRepoAgeCmd)
	summariseCmd.AddCommand(summariseCheckTimeCmd)

	// root commands
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("name", "n", "", "Resource name (e.g. repository path)")
	checkCmd.Flags().StringP("seed", "s", "", "Seed for a reproducible draw")
	checkCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringP("name", "n", "", "Resource name (e.g. repository path)")
	recordCmd.Flags().StringP("commit-time", "t", "", "Commit timestamp (RFC 3339)")
	recordCmd.Flags().StringP("commit-hash", "c", "", "Commit hash (40 or 64 hex characters)")
	recordCmd.MarkFlagRequired("name")
	recordCmd.MarkFlagRequired("commit-time")
	recordCmd.MarkFlagRequired("commit-hash")

	rootCmd.AddCommand(summariseCmd)

	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().StringP("name", "n", "", "Resource name (e.g. repository path)")
	archiveCmd.Flags().Bool("clear", false, "Clear the archived flag instead of setting it")
	archiveCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(listCmd)
}
