package contracts

type Status int

const (
	StatusPending Status = iota
	StatusDownloading
	StatusVerifying
	StatusStaging
	StatusDone
	StatusFailed
	StatusVerifyFailed
)

func (this Status) String() string {
	switch this {
	case StatusPending:
		return "pending"
	case StatusDownloading:
		return "downloading"
	case StatusVerifying:
		return "verifying"
	case StatusStaging:
		return "staging"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusVerifyFailed:
		return "verify_failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further status will follow for the item.
func (this Status) Terminal() bool {
	return this == StatusDone || this == StatusFailed || this == StatusVerifyFailed
}

type Phase int

const (
	PhaseDownloading Phase = iota
	PhaseAwaitingExit
	PhaseReplacing
	PhaseCleaningUp
	PhaseRelaunching
)

func (this Phase) String() string {
	switch this {
	case PhaseDownloading:
		return "downloading update files"
	case PhaseAwaitingExit:
		return "waiting for the application to exit"
	case PhaseReplacing:
		return "replacing files"
	case PhaseCleaningUp:
		return "cleaning up"
	case PhaseRelaunching:
		return "relaunching"
	default:
		return "unknown"
	}
}

// Notifier receives progress from the update run. Every call arrives on the
// goroutine running the update; implementations that touch presentation
// state must hand the call over to whatever goroutine owns that state.
type Notifier interface {
	OverallProgress(percent int, detail string)
	ItemStatus(index int, status Status, sizeText string)
	Phase(phase Phase)
	Completed(success bool)
	Error(message string)
}

const UnknownSize = "-"
