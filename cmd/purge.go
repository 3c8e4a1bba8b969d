package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vault-hygiene/pkg/vault"
)

var (
	purgePath   string
	purgeDir    string
	purgeDryRun bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete a KV v1 secret tree after verifying backups",
	Long: `Walk the secret tree under the given path and delete every leaf secret
that has a verified backup file. A leaf without well-formed backup JSON is
never deleted. Live mode asks for two confirmations before the walk starts;
--dry-run only prints what would be deleted.`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVarP(&purgePath, "path", "p", "secret/", "Root of the secret tree (must end in /)")
	purgeCmd.Flags().StringVarP(&purgeDir, "dir", "d", "vault-backup", "Directory holding backup files")
	purgeCmd.Flags().BoolVarP(&purgeDryRun, "dry-run", "n", false, "Print intended deletions without deleting")
}

func runPurge(cmd *cobra.Command, args []string) error {
	file, cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	cfg.Mount = purgePath
	if !cmd.Flags().Changed("path") && file.Mount != "" {
		cfg.Mount = file.Mount
	}
	if !strings.HasSuffix(cfg.Mount, "/") {
		return fmt.Errorf("path must end in /: %s", cfg.Mount)
	}

	if !cmd.Flags().Changed("dir") && file.BackupDir != "" {
		purgeDir = file.BackupDir
	}
	cfg.BackupDir, err = homedir.Expand(purgeDir)
	if err != nil {
		return fmt.Errorf("failed to expand backup dir: %w", err)
	}

	cfg.DryRun = purgeDryRun
	if !cmd.Flags().Changed("dry-run") && file.DryRun {
		cfg.DryRun = true
	}

	if !cfg.DryRun {
		info, err := os.Stat(cfg.BackupDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("backup directory %s does not exist, run backup first", cfg.BackupDir)
		}
		if err := confirmPurge(os.Stdin, cfg.Mount); err != nil {
			return err
		}
	}

	client, err := connect(cfg)
	if err != nil {
		return err
	}

	action := &vault.Purge{Deleter: client, BackupDir: cfg.BackupDir, DryRun: cfg.DryRun}
	counts := make(map[vault.PurgeState]int)
	vault.Walk(client, cfg.Mount, func(leaf string) {
		state, err := action.Run(leaf)
		counts[state]++
		switch state {
		case vault.PurgeDryRun:
			log.Infof("dry-run: would delete %s", leaf)
		case vault.PurgeVerificationFailed:
			log.WithError(err).Errorf("refusing to delete %s", leaf)
		case vault.PurgeDeleteFailed:
			log.WithError(err).Errorf("failed to delete %s", leaf)
		case vault.PurgeDeleted:
			log.Infof("deleted %s", leaf)
		}
	})

	if cfg.DryRun {
		log.Infof("dry-run complete: %d secrets would be deleted", counts[vault.PurgeDryRun])
		return nil
	}
	log.Infof("purge complete: %d deleted, %d verification failures, %d delete failures",
		counts[vault.PurgeDeleted], counts[vault.PurgeVerificationFailed], counts[vault.PurgeDeleteFailed])
	return nil
}

// confirmPurge requires two distinct literal answers before anything is
// deleted: "yes", then the target path typed back.
func confirmPurge(in io.Reader, path string) error {
	reader := bufio.NewReader(in)

	fmt.Printf("This will permanently delete every secret under %s. Type 'yes' to continue: ", path)
	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(answer) != "yes" {
		return fmt.Errorf("purge cancelled")
	}

	fmt.Printf("Confirm by typing the path (%s): ", path)
	answer, _ = reader.ReadString('\n')
	if strings.TrimSpace(answer) != path {
		return fmt.Errorf("purge cancelled")
	}
	return nil
}
