package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Reader fetches the value of a leaf secret.
type Reader interface {
	Read(path string) (map[string]interface{}, error)
}

// SanitizePath maps a secret path to a filesystem-safe name. Every byte
// outside [A-Za-z0-9._-] becomes '_', so "secret/app/db" turns into
// "secret_app_db".
func SanitizePath(path string) string {
	out := []byte(path)
	for i, b := range out {
		switch {
		case b >= 'a' && b <= 'z':
		case b >= 'A' && b <= 'Z':
		case b >= '0' && b <= '9':
		case b == '.' || b == '_' || b == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// BackupFile returns the backup destination for a leaf path.
func BackupFile(dir, leaf string) string {
	return filepath.Join(dir, SanitizePath(leaf)+".json")
}

// Backup writes leaf secrets to JSON files under Dir.
type Backup struct {
	Reader Reader
	Dir    string
}

// Run fetches one leaf and writes its backup file. A fetch failure
// leaves no file behind, and a failed write removes the partial file,
// so a backup file exists only if it holds the complete secret.
func (b *Backup) Run(leaf string) error {
	data, err := b.Reader.Read(leaf)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", leaf, err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", leaf, err)
	}

	if err := os.MkdirAll(b.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}

	dest := BackupFile(b.Dir, leaf)
	if err := os.WriteFile(dest, out, 0600); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// VerifyBackup checks that a backup for leaf exists under dir and holds
// well-formed JSON. The secret's content is never interpreted.
func VerifyBackup(dir, leaf string) error {
	dest := BackupFile(dir, leaf)

	data, err := os.ReadFile(dest)
	if err != nil {
		return fmt.Errorf("no backup for %s: %w", leaf, err)
	}
	if len(data) == 0 || !json.Valid(data) {
		return fmt.Errorf("backup %s is not valid JSON", dest)
	}
	return nil
}
