package structs

// ApplicationStatus is the state of an application.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusHired       ApplicationStatus = "hired"
	StatusRejected    ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// transitions lists, per state, the states an employer may move an
// application to. Every state may be re-written with itself.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:     {StatusPending, StatusShortlisted, StatusHired, StatusRejected},
	StatusShortlisted: {StatusShortlisted, StatusHired, StatusRejected},
	StatusHired:       {StatusHired},
	StatusRejected:    {StatusRejected},
}

// CanTransition reports whether an application in from may be set to to.
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanWithdraw reports whether an application in s may be withdrawn.
func CanWithdraw(s ApplicationStatus) bool {
	return s.Valid() && s != StatusHired
}

// CanSetJobStatus reports whether an owner may put a job in s. An open job
// has no hired worker and an in-progress job has one; the terminal states
// are reachable either way.
func CanSetJobStatus(s JobStatus, hired bool) bool {
	switch s {
	case JobOpen:
		return !hired
	case JobInProgress:
		return hired
	case JobCompleted, JobClosed, JobCancelled:
		return true
	}
	return false
}
