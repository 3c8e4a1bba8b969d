package vault

import "fmt"

// Deleter removes a leaf secret from the store.
type Deleter interface {
	Delete(path string) error
}

// Purge deletes leaf secrets, refusing any leaf that lacks a verified
// backup. Each leaf is independent; a failure never stops the walk.
type Purge struct {
	Deleter   Deleter
	BackupDir string
	DryRun    bool
}

// Run processes one leaf and returns its terminal state. In dry-run
// mode it short-circuits before verification, so neither the filesystem
// nor the store is touched. In live mode the delete capability is
// invoked only after the leaf's backup file has been verified.
func (p *Purge) Run(leaf string) (PurgeState, error) {
	if p.DryRun {
		return PurgeDryRun, nil
	}

	if err := VerifyBackup(p.BackupDir, leaf); err != nil {
		return PurgeVerificationFailed, err
	}

	if err := p.Deleter.Delete(leaf); err != nil {
		return PurgeDeleteFailed, fmt.Errorf("failed to delete %s: %w", leaf, err)
	}
	return PurgeDeleted, nil
}
