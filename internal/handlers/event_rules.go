package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/junhot777-lab/cyber-calender/internal/auth"
	"github.com/junhot777-lab/cyber-calender/models"

	"gorm.io/gorm"
)

// The calendar only covers a fixed span. Mutations outside it are rejected
// and list bounds are clamped to it. RangeEnd is exclusive.
var (
	RangeStart = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	RangeEnd   = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
)

const rangeDetail = "outside the allowed range (2025-12 ~ 2026-12)"

const (
	maxTitleLen = 200
	maxNoteLen  = 500
)

// inCalendarRange reports whether an event lies entirely inside the allowed
// span.
func inCalendarRange(startAt, endAt time.Time) bool {
	return !startAt.Before(RangeStart) && !endAt.After(RangeEnd)
}

// validateEventInput checks the fields every create/update shares. It returns
// a human-readable detail string, or "" when the input is acceptable.
func validateEventInput(title, note string, startAt, endAt time.Time) string {
	if strings.TrimSpace(title) == "" {
		return "title must not be empty"
	}
	if utf8.RuneCountInString(strings.TrimSpace(title)) > maxTitleLen {
		return "title must be at most 200 characters"
	}
	if utf8.RuneCountInString(strings.TrimSpace(note)) > maxNoteLen {
		return "note must be at most 500 characters"
	}
	if startAt.IsZero() || endAt.IsZero() {
		return "start_at and end_at are required"
	}
	if startAt.After(endAt) {
		return "start_at must not be after end_at"
	}
	if !inCalendarRange(startAt, endAt) {
		return rangeDetail
	}
	return ""
}

// mutationGate runs the ownership and passcode checks shared by update and
// delete, in that order. It returns the HTTP status and detail of the first
// failing check, or (0, "") when the mutation may proceed.
func mutationGate(ev *models.Event, user models.User, passcode string) (int, string) {
	if ev.OwnerUserID != user.ID {
		return http.StatusForbidden, "you are not the owner of this event"
	}
	if !auth.VerifyPasscode(passcode, user.PasscodeHash) {
		return http.StatusUnauthorized, genericAuthDetail
	}
	return 0, ""
}

// window is the half-open interval [Start, End) a list query covers, already
// clamped to the allowed calendar range.
type window struct {
	Start time.Time
	End   time.Time
}

// parseWindow builds a query window from the optional start/end parameters.
// Missing bounds default to the calendar range, out-of-range bounds are
// clamped to it. It returns a detail string instead of a window when the
// parameters are unusable.
func parseWindow(startRaw, endRaw string) (window, string) {
	w := window{Start: RangeStart, End: RangeEnd}

	if startRaw != "" {
		t, err := parseTimeParam(startRaw)
		if err != nil {
			return window{}, "invalid start parameter"
		}
		w.Start = t
	}
	if endRaw != "" {
		t, err := parseTimeParam(endRaw)
		if err != nil {
			return window{}, "invalid end parameter"
		}
		w.End = t
	}

	if w.Start.Before(RangeStart) {
		w.Start = RangeStart
	}
	if w.End.After(RangeEnd) {
		w.End = RangeEnd
	}
	if w.Start.After(w.End) {
		return window{}, "start must not be after end"
	}
	return w, ""
}

// overlaps is the window predicate: an event intersects [Start, End) when it
// ends at or after Start and begins before End. A zero-length event sitting
// exactly on Start still counts.
func (w window) overlaps(startAt, endAt time.Time) bool {
	return !endAt.Before(w.Start) && startAt.Before(w.End)
}

// scope applies the same predicate to a query.
func (w window) scope(q *gorm.DB) *gorm.DB {
	return q.Where("end_at >= ? AND start_at < ?", w.Start, w.End)
}

// parseTimeParam accepts RFC 3339 timestamps and bare dates.
func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
