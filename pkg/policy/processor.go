package policy

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"vault-hygiene/pkg/vault"
)

// Store is the policy side of the Vault API the processor needs.
type Store interface {
	ListPolicies() ([]string, error)
	GetPolicy(name string) (string, error)
	PutPolicy(name, rules string) error
}

// Processor rewrites every service policy on the store. Originals are
// backed up to BackupDir before any change; in dry-run mode the
// rewritten text is printed and nothing is written back.
type Processor struct {
	Store     Store
	BackupDir string
	DryRun    bool
}

// Run lists policies, filters to the service naming convention, and
// rewrites each candidate. Per-policy failures are reported and
// skipped; only the initial listing can fail the run.
func (p *Processor) Run() error {
	names, err := p.Store.ListPolicies()
	if err != nil {
		return fmt.Errorf("failed to list policies: %w", err)
	}

	var candidates []string
	for _, name := range names {
		if IsServicePolicy(name) {
			candidates = append(candidates, name)
		}
	}
	log.Infof("found %d service policies", len(candidates))

	updated, failed := 0, 0
	for _, name := range candidates {
		if err := p.process(name); err != nil {
			log.WithError(err).Errorf("policy %s not updated", name)
			failed++
			continue
		}
		updated++
	}

	if p.DryRun {
		log.Infof("dry-run complete: %d policies processed, %d failed", updated, failed)
	} else {
		log.Infof("rewrite complete: %d policies processed, %d failed", updated, failed)
	}
	return nil
}

func (p *Processor) process(name string) error {
	text, err := p.Store.GetPolicy(name)
	if err != nil {
		return err
	}

	if err := p.backup(name, text); err != nil {
		return err
	}

	result, err := Rewrite(name, text)
	if err != nil {
		return err
	}

	if result == text {
		log.Infof("policy %s already clean", name)
		return nil
	}

	if p.DryRun {
		log.Infof("dry-run: would update policy %s:\n%s", name, result)
		return nil
	}

	// Stage before the commit so a rejected write is never lost.
	staged := filepath.Join(p.BackupDir, vault.SanitizePath(name)+".staged.hcl")
	if err := os.WriteFile(staged, []byte(result), 0600); err != nil {
		return fmt.Errorf("failed to stage policy: %w", err)
	}

	if err := p.Store.PutPolicy(name, result); err != nil {
		log.Warnf("rejected text kept at %s for inspection", staged)
		return err
	}
	os.Remove(staged)

	log.Infof("updated policy %s", name)
	return nil
}

func (p *Processor) backup(name, text string) error {
	if err := os.MkdirAll(p.BackupDir, 0700); err != nil {
		return fmt.Errorf("failed to create policy backup dir: %w", err)
	}

	dest := filepath.Join(p.BackupDir, vault.SanitizePath(name)+".hcl")
	if err := os.WriteFile(dest, []byte(text), 0600); err != nil {
		return fmt.Errorf("failed to back up policy: %w", err)
	}
	return nil
}
