package domain

import "time"

// SleepActivityID is the reserved pseudo-activity for sleep intervals. It is
// implicit for every user and never materialised as an activities row.
const SleepActivityID int64 = 0

// SleepActivityName is the display name of the sleep pseudo-activity.
const SleepActivityName = "Sleep"

// User owns activities and events. Timezone holds an IANA zone name and must
// resolve with time.LoadLocation.
type User struct {
	ID        int64
	Username  string
	Timezone  string
	CreatedAt time.Time
}

// Activity classifies logged time as good or not. Names are unique per user,
// not globally.
type Activity struct {
	ID     int64
	UserID int64
	Name   string
	IsGood bool
}

// Event is a write-once half-open interval [Start, End) of user activity,
// stored in UTC. ActivityID 0 marks sleep.
type Event struct {
	ID         int64
	UserID     int64
	ActivityID int64
	Start      time.Time
	End        time.Time
}

// Duration reports the whole, unclipped span of the event.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
