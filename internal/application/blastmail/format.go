// Package blastmail composes the emails the service sends: blast
// announcements, claim confirmations, and claim notifications.
package blastmail

import (
	"fmt"
	"net/url"
	"time"
)

// FormatSlotTime renders a slot's window for confirmation emails, in the
// coach's timezone, e.g. "Monday, March 9, 2026 from 4:00 PM to 5:00 PM (NZDT)".
func FormatSlotTime(start, end time.Time, tz string) string {
	loc := loadLocation(tz)
	s := start.In(loc)
	e := end.In(loc)
	return fmt.Sprintf("%s from %s to %s (%s)",
		s.Format("Monday, January 2, 2006"),
		s.Format("3:04 PM"),
		e.Format("3:04 PM"),
		s.Format("MST"))
}

// FormatSlotTimeShort renders a slot's window for blast listings,
// e.g. "Mon, Mar 9 • 4:00 PM - 5:00 PM".
func FormatSlotTimeShort(start, end time.Time, tz string) string {
	loc := loadLocation(tz)
	s := start.In(loc)
	e := end.In(loc)
	return fmt.Sprintf("%s • %s - %s",
		s.Format("Mon, Jan 2"),
		s.Format("3:04 PM"),
		e.Format("3:04 PM"))
}

// ClaimURL builds the public claim link for one slot and recipient. The
// email is carried along so the claim page can resolve the claimant without
// a login.
func ClaimURL(baseURL, slotID, token, clientEmail string) string {
	return fmt.Sprintf("%s/claim?slot=%s&token=%s&email=%s",
		baseURL, slotID, token, url.QueryEscape(clientEmail))
}

func loadLocation(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		return time.UTC
	}
	return loc
}
