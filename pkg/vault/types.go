package vault

// Config carries everything a command needs to run. It is built once at
// startup from flags, environment variables, and the optional config
// file; nothing below cmd reads ambient state.
type Config struct {
	Address   string
	Token     string
	Mount     string
	BackupDir string
	DryRun    bool
}

// PurgeState is the terminal state of a single leaf in a purge run.
type PurgeState int

const (
	PurgeDryRun PurgeState = iota
	PurgeVerificationFailed
	PurgeDeleteFailed
	PurgeDeleted
)

func (s PurgeState) String() string {
	switch s {
	case PurgeDryRun:
		return "dry-run"
	case PurgeVerificationFailed:
		return "verification failed"
	case PurgeDeleteFailed:
		return "delete failed"
	case PurgeDeleted:
		return "deleted"
	}
	return "unknown"
}
