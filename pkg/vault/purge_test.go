package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	deleted []string
	err     error
}

func (f *fakeDeleter) Delete(path string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func writeBackup(t *testing.T, dir, leaf, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SanitizePath(leaf)+".json"), []byte(content), 0600))
}

func TestPurgeRun(t *testing.T) {
	t.Run("deletes a leaf with a verified backup", func(t *testing.T) {
		dir := t.TempDir()
		writeBackup(t, dir, "secret/app", `{"k":"v"}`)

		d := &fakeDeleter{}
		p := &Purge{Deleter: d, BackupDir: dir}

		state, err := p.Run("secret/app")
		require.NoError(t, err)
		assert.Equal(t, PurgeDeleted, state)
		assert.Equal(t, []string{"secret/app"}, d.deleted)
	})

	t.Run("missing backup blocks the delete", func(t *testing.T) {
		d := &fakeDeleter{}
		p := &Purge{Deleter: d, BackupDir: t.TempDir()}

		state, err := p.Run("secret/app")
		assert.Error(t, err)
		assert.Equal(t, PurgeVerificationFailed, state)
		assert.Empty(t, d.deleted)
	})

	t.Run("malformed backup blocks the delete", func(t *testing.T) {
		dir := t.TempDir()
		writeBackup(t, dir, "secret/app", `{"k":`)

		d := &fakeDeleter{}
		p := &Purge{Deleter: d, BackupDir: dir}

		state, _ := p.Run("secret/app")
		assert.Equal(t, PurgeVerificationFailed, state)
		assert.Empty(t, d.deleted)
	})

	t.Run("dry-run never touches the store", func(t *testing.T) {
		// No backup exists either; dry-run must not even verify.
		d := &fakeDeleter{err: errors.New("must not be called")}
		p := &Purge{Deleter: d, BackupDir: t.TempDir(), DryRun: true}

		state, err := p.Run("secret/app")
		require.NoError(t, err)
		assert.Equal(t, PurgeDryRun, state)
		assert.Empty(t, d.deleted)
	})

	t.Run("delete failure is reported distinctly", func(t *testing.T) {
		dir := t.TempDir()
		writeBackup(t, dir, "secret/app", `{"k":"v"}`)

		d := &fakeDeleter{err: errors.New("permission denied")}
		p := &Purge{Deleter: d, BackupDir: dir}

		state, err := p.Run("secret/app")
		assert.Error(t, err)
		assert.Equal(t, PurgeDeleteFailed, state)
	})
}

func TestPurgeStateString(t *testing.T) {
	assert.Equal(t, "deleted", PurgeDeleted.String())
	assert.Equal(t, "verification failed", PurgeVerificationFailed.String())
	assert.Equal(t, "delete failed", PurgeDeleteFailed.String())
	assert.Equal(t, "dry-run", PurgeDryRun.String())
}
