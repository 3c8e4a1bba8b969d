package cmd

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"vault-hygiene/pkg/policy"
)

var (
	rewriteDir    string
	rewriteDryRun bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite-policies",
	Short: "Strip secret/ grants from service policies",
	Long: `Rewrite every policy named service/<name> or <name>-service: remove rule
blocks for secret/ paths and grant read access on aws_dmz/creds/<name>
instead. The original text of each policy is backed up before any change.`,
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteDir, "dir", "d", "policy-backup", "Directory for policy backups")
	rewriteCmd.Flags().BoolVarP(&rewriteDryRun, "dry-run", "n", false, "Print rewritten policies without writing them")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	file, cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("dir") && file.PolicyDir != "" {
		rewriteDir = file.PolicyDir
	}
	dir, err := homedir.Expand(rewriteDir)
	if err != nil {
		return fmt.Errorf("failed to expand policy backup dir: %w", err)
	}

	dryRun := rewriteDryRun
	if !cmd.Flags().Changed("dry-run") && file.DryRun {
		dryRun = true
	}

	client, err := connect(cfg)
	if err != nil {
		return err
	}

	proc := &policy.Processor{Store: client, BackupDir: dir, DryRun: dryRun}
	return proc.Run()
}
