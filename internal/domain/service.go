// Package domain defines the records and write workflows for the minutes
// service. Reads are the aggregation engine's concern.
package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrUnknownUser is returned when a user id or username cannot be resolved.
	ErrUnknownUser = errors.New("user not found")
	// ErrInvalidTimezone is returned for identifiers that are not IANA zone names.
	ErrInvalidTimezone = errors.New("unrecognised timezone")
	// ErrInvalidInterval is returned when an interval start does not precede its end.
	ErrInvalidInterval = errors.New("interval start must precede end")
	// ErrActivityNotFound is returned when an activity name does not belong to the user.
	ErrActivityNotFound = errors.New("activity not found for user")
	// ErrDuplicateActivity is returned when a user already has an activity with that name.
	ErrDuplicateActivity = errors.New("activity name already exists for user")
	// ErrInvalidActivityName is returned for blank, oversized or malformed activity names.
	ErrInvalidActivityName = errors.New("invalid activity name")
)

// Repository captures the write-side persistence operations plus the lookups
// the logging workflow needs.
type Repository interface {
	CreateUser(ctx context.Context, user User) (int64, error)
	// CreateActivity relies on the store's per-user uniqueness constraint and
	// surfaces its violation as ErrDuplicateActivity.
	CreateActivity(ctx context.Context, activity Activity) (int64, error)
	CreateEvent(ctx context.Context, event Event) (int64, error)
	UserTimezone(ctx context.Context, userID int64) (string, error)
	ActivityIDByName(ctx context.Context, userID int64, name string) (int64, error)
}

// Service orchestrates the write workflows: user creation, activity creation
// and event logging.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateUser registers a user after validating the timezone identifier.
// now becomes the account-creation instant.
func (s *Service) CreateUser(ctx context.Context, username, timezone string, now time.Time) (User, error) {
	if err := validateZone(timezone); err != nil {
		return User{}, err
	}

	user := User{
		Username:  strings.TrimSpace(username),
		Timezone:  timezone,
		CreatedAt: now.UTC(),
	}
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.ID = id
	return user, nil
}

var activityNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

const maxActivityNameLen = 20

// CreateActivity registers a new activity for the user. Duplicate-name
// detection is delegated to the store's uniqueness constraint so concurrent
// identical requests cannot both slip through a check-then-insert gap.
func (s *Service) CreateActivity(ctx context.Context, userID int64, name string, isGood bool) (Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxActivityNameLen || !activityNamePattern.MatchString(name) {
		return Activity{}, ErrInvalidActivityName
	}
	if name == SleepActivityName {
		// The implicit sleep pseudo-activity already claims this name.
		return Activity{}, ErrDuplicateActivity
	}

	activity := Activity{UserID: userID, Name: name, IsGood: isGood}
	id, err := s.repo.CreateActivity(ctx, activity)
	if err != nil {
		return Activity{}, err
	}
	activity.ID = id
	return activity, nil
}

// clockLayout is the wall-clock format users enter, e.g. "10:30 PM".
const clockLayout = "3:04 PM"

// LogEventInput carries a locally-entered interval for the user's current
// local day.
type LogEventInput struct {
	UserID   int64
	Activity string // display name; SleepActivityName selects the pseudo-activity
	Start    string // local wall-clock time in clockLayout
	End      string
	Now      time.Time
}

// LogEvent converts locally-entered wall-clock times into a UTC event on the
// user's current local date, the inverse of the engine's window resolution.
// A sleep entry that crosses midnight starts the previous evening; any other
// interval that crosses midnight runs into the next day.
func (s *Service) LogEvent(ctx context.Context, in LogEventInput) (Event, error) {
	tz, err := s.repo.UserTimezone(ctx, in.UserID)
	if err != nil {
		return Event{}, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Event{}, ErrInvalidTimezone
	}

	startClock, err := time.Parse(clockLayout, strings.TrimSpace(in.Start))
	if err != nil {
		return Event{}, ErrInvalidInterval
	}
	endClock, err := time.Parse(clockLayout, strings.TrimSpace(in.End))
	if err != nil {
		return Event{}, ErrInvalidInterval
	}

	today := in.Now.In(loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), endClock.Hour(), endClock.Minute(), 0, 0, loc)

	isSleep := in.Activity == SleepActivityName
	if isSleep {
		if !end.After(start) {
			// The night crossed local midnight: the start belongs to yesterday
			// evening. A sleep fully within this morning keeps today's date.
			start = start.AddDate(0, 0, -1)
		}
	} else if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	if !end.After(start) {
		return Event{}, ErrInvalidInterval
	}

	activityID := SleepActivityID
	if !isSleep {
		activityID, err = s.repo.ActivityIDByName(ctx, in.UserID, in.Activity)
		if err != nil {
			return Event{}, err
		}
	}

	event := Event{
		UserID:     in.UserID,
		ActivityID: activityID,
		Start:      start.UTC(),
		End:        end.UTC(),
	}
	event.ID, err = s.repo.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// LogInterval records an event from ISO-8601 instants, for callers that
// already hold absolute times.
func (s *Service) LogInterval(ctx context.Context, userID, activityID int64, start, end string) (Event, error) {
	startAt, err := ParseInstant(start)
	if err != nil {
		return Event{}, err
	}
	endAt, err := ParseInstant(end)
	if err != nil {
		return Event{}, err
	}
	if !endAt.After(startAt) {
		return Event{}, ErrInvalidInterval
	}

	event := Event{
		UserID:     userID,
		ActivityID: activityID,
		Start:      startAt,
		End:        endAt,
	}
	event.ID, err = s.repo.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

func validateZone(name string) error {
	if name == "" || name == "Local" {
		return ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}
