package cmd

import (
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vault-hygiene/pkg/vault"
)

var (
	backupPath string
	backupDir  string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up a KV v1 secret tree to local JSON files",
	Long: `Walk the secret tree under the given path and write every leaf secret to
<dir>/<sanitized-path>.json. Single-secret failures are reported and skipped;
rerunning against an unchanged tree rewrites the same files.`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&backupPath, "path", "p", "secret/", "Root of the secret tree (must end in /)")
	backupCmd.Flags().StringVarP(&backupDir, "dir", "d", "vault-backup", "Directory for backup files")
}

func runBackup(cmd *cobra.Command, args []string) error {
	file, cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	cfg.Mount = backupPath
	if !cmd.Flags().Changed("path") && file.Mount != "" {
		cfg.Mount = file.Mount
	}
	if !strings.HasSuffix(cfg.Mount, "/") {
		return fmt.Errorf("path must end in /: %s", cfg.Mount)
	}

	if !cmd.Flags().Changed("dir") && file.BackupDir != "" {
		backupDir = file.BackupDir
	}
	cfg.BackupDir, err = homedir.Expand(backupDir)
	if err != nil {
		return fmt.Errorf("failed to expand backup dir: %w", err)
	}

	client, err := connect(cfg)
	if err != nil {
		return err
	}

	action := &vault.Backup{Reader: client, Dir: cfg.BackupDir}
	seen, saved := 0, 0
	vault.Walk(client, cfg.Mount, func(leaf string) {
		seen++
		if err := action.Run(leaf); err != nil {
			log.WithError(err).Warnf("skipped %s", leaf)
			return
		}
		saved++
		log.Infof("backed up %s", leaf)
	})

	log.Infof("backup complete: %d of %d secrets written to %s", saved, seen, cfg.BackupDir)
	return nil
}
