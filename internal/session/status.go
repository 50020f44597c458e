package session

type Status string

const (
	Idle        Status = "idle"
	Listening   Status = "listening"
	Restarting  Status = "restarting"
	Unavailable Status = "unavailable"
)

// Active reports whether the session is logically running, including the
// short window while a dropped stream is being reopened.
func (s Status) Active() bool {
	return s == Listening || s == Restarting
}
