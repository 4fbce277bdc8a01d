package blastmail

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"rackets/internal/adapters/email"
	clientDomain "rackets/internal/domain/client"
	clubDomain "rackets/internal/domain/club"
	coachDomain "rackets/internal/domain/coach"
	slotDomain "rackets/internal/domain/slot"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// CoachGroup pairs a coach's name with their slots, for club blasts.
type CoachGroup struct {
	CoachName string
	Slots     []slotDomain.Slot
}

const emailStyle = `body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #1a1a1a; max-width: 600px; margin: 0 auto; padding: 20px; }
.container { background: white; border-radius: 12px; padding: 32px; }
.header { text-align: center; margin-bottom: 24px; }
.urgent { background: #fff3cd; border: 1px solid #ffc107; border-radius: 6px; padding: 12px; margin: 16px 0; font-size: 14px; }
.footer { margin-top: 32px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #888; text-align: center; }`

// plural returns "s" when n is not 1.
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// renderNote converts a slot note's markdown to HTML. Returns "" for an
// empty note.
func renderNote(note string) string {
	if note == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(note), &buf); err != nil {
		return html.EscapeString(note)
	}
	return buf.String()
}

// CoachBlast composes the announcement email one client receives for a
// coach-scoped blast: every unnotified open slot of the coach, each with its
// own claim link.
// PRE: len(slots) > 0
// POST: Returns a ready SendRequest addressed to the client
func CoachBlast(cl clientDomain.Client, co coachDomain.Coach, slots []slotDomain.Slot, baseURL string) email.SendRequest {
	var rowsHTML, rowsText strings.Builder
	for _, s := range slots {
		claimURL := ClaimURL(baseURL, s.ID, s.ClaimToken, cl.Email)
		when := FormatSlotTimeShort(s.StartTime, s.EndTime, co.Timezone)

		rowsHTML.WriteString(`<tr><td style="padding: 12px 0; border-bottom: 1px solid #eee;">`)
		rowsHTML.WriteString(`<div style="font-weight: 600;">` + html.EscapeString(when) + `</div>`)
		if s.Note != "" {
			rowsHTML.WriteString(`<div style="font-size: 13px; color: #666;">` + renderNote(s.Note) + `</div>`)
		}
		rowsHTML.WriteString(`<a href="` + claimURL + `" style="display: inline-block; margin-top: 8px; padding: 8px 16px; background: #0066cc; color: white; text-decoration: none; border-radius: 6px;">Claim This Slot</a>`)
		rowsHTML.WriteString(`</td></tr>`)

		rowsText.WriteString("📅 " + when)
		if s.Note != "" {
			rowsText.WriteString(" - " + s.Note)
		}
		rowsText.WriteString("\n   Claim: " + claimURL + "\n\n")
	}

	n := len(slots)
	heading := fmt.Sprintf("Hi %s! %s has %d open slot%s!",
		html.EscapeString(cl.Name), html.EscapeString(co.Name), n, plural(n))

	htmlBody := `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>` + emailStyle + `</style></head>
<body><div class="container">
<div class="header"><div style="font-size: 24px; font-weight: 700; color: #0066cc;">🎾 Rackets</div></div>
<h1>` + heading + `</h1>
<p>Great news! The following lesson times are available for booking:</p>
<div class="urgent">⚡ <strong>First come, first served!</strong> Click to claim before someone else does.</div>
<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">` + rowsHTML.String() + `</table>
<div class="footer">
<p>This email was sent on behalf of ` + html.EscapeString(co.Name) + `.</p>
<p>You received this because you're on ` + html.EscapeString(co.Name) + `'s client list.</p>
</div></div></body></html>`

	text := fmt.Sprintf("Hi %s!\n\n%s has %d open slot%s available!\n\n⚡ First come, first served!\n\n%s---\nThis email was sent on behalf of %s.\n",
		cl.Name, co.Name, n, plural(n), rowsText.String(), co.Name)

	return email.SendRequest{
		To:      []string{cl.Email},
		Subject: fmt.Sprintf("🎾 %d Open Slot%s with %s - Claim Now!", n, plural(n), co.Name),
		HTML:    htmlBody,
		Text:    text,
		ReplyTo: co.Email,
	}
}

// ClubBlast composes the announcement email one client receives for a
// club-scoped blast: every coach's unnotified open slots, grouped by coach.
// Times are rendered in tz, the sending director's timezone.
// PRE: at least one group with at least one slot
// POST: Returns a ready SendRequest addressed to the client
func ClubBlast(cl clientDomain.Client, cb clubDomain.Club, groups []CoachGroup, tz, baseURL string) email.SendRequest {
	var rowsHTML, rowsText strings.Builder
	total := 0
	for _, g := range groups {
		rowsHTML.WriteString(`<tr><td style="padding: 16px 0 8px 0; font-weight: 700; color: #0066cc; border-bottom: 2px solid #0066cc;">🎾 ` +
			html.EscapeString(g.CoachName) + `</td></tr>`)
		rowsText.WriteString("\n🎾 " + g.CoachName + "\n")

		for _, s := range g.Slots {
			total++
			claimURL := ClaimURL(baseURL, s.ID, s.ClaimToken, cl.Email)
			when := FormatSlotTimeShort(s.StartTime, s.EndTime, tz)

			rowsHTML.WriteString(`<tr><td style="padding: 12px 0 12px 16px; border-bottom: 1px solid #eee;">`)
			rowsHTML.WriteString(`<div style="font-weight: 600;">` + html.EscapeString(when) + `</div>`)
			if s.Note != "" {
				rowsHTML.WriteString(`<div style="font-size: 13px; color: #666;">` + renderNote(s.Note) + `</div>`)
			}
			rowsHTML.WriteString(`<a href="` + claimURL + `" style="display: inline-block; margin-top: 8px; padding: 8px 16px; background: #0066cc; color: white; text-decoration: none; border-radius: 6px;">Claim This Slot</a>`)
			rowsHTML.WriteString(`</td></tr>`)

			rowsText.WriteString("   📅 " + when)
			if s.Note != "" {
				rowsText.WriteString(" - " + s.Note)
			}
			rowsText.WriteString("\n      Claim: " + claimURL + "\n")
		}
	}

	heading := fmt.Sprintf("Hi %s! %d lesson slot%s just opened up!",
		html.EscapeString(cl.Name), total, plural(total))

	htmlBody := `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>` + emailStyle + `</style></head>
<body><div class="container">
<div class="header"><div style="font-size: 24px; font-weight: 700; color: #0066cc;">🏆 ` + html.EscapeString(cb.Name) + `</div></div>
<h1>` + heading + `</h1>
<p>Check out these available times from our coaches:</p>
<div class="urgent">⚡ <strong>First come, first served!</strong> Click to claim before someone else does.</div>
<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">` + rowsHTML.String() + `</table>
<div class="footer"><p>This email was sent by ` + html.EscapeString(cb.Name) + `.</p></div>
</div></body></html>`

	text := fmt.Sprintf("Hi %s!\n\n%s has %d open lesson slot%s available!\n\n⚡ First come, first served!\n%s---\nThis email was sent by %s.\n",
		cl.Name, cb.Name, total, plural(total), rowsText.String(), cb.Name)

	return email.SendRequest{
		To:      []string{cl.Email},
		Subject: fmt.Sprintf("🏆 %d Open Slot%s at %s - Claim Now!", total, plural(total), cb.Name),
		HTML:    htmlBody,
		Text:    text,
	}
}

// ClientConfirmation composes the email a client receives right after
// winning a claim.
// POST: Returns a ready SendRequest addressed to the client
func ClientConfirmation(cl clientDomain.Client, s slotDomain.Slot, co coachDomain.Coach) email.SendRequest {
	when := FormatSlotTime(s.StartTime, s.EndTime, co.Timezone)

	noteHTML := ""
	noteText := ""
	if s.Note != "" {
		noteHTML = `<div style="margin-top: 12px; font-style: italic;">` + renderNote(s.Note) + `</div>`
		noteText = fmt.Sprintf("📝 Note: %q\n", s.Note)
	}

	htmlBody := `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>` + emailStyle + `</style></head>
<body><div class="container">
<div class="header"><div style="font-size: 48px;">✅</div><h1 style="color: #28a745;">Your Lesson is Confirmed!</h1></div>
<p>Great news, ` + html.EscapeString(cl.Name) + `! You've successfully claimed this lesson slot:</p>
<div style="background: #d4edda; border-radius: 8px; padding: 20px; border: 1px solid #28a745;">
<div style="font-size: 18px; font-weight: 600;">` + html.EscapeString(when) + `</div>
<div style="margin-top: 8px;">with ` + html.EscapeString(co.Name) + `</div>` + noteHTML + `
</div>
<p>If you need to cancel or have questions, please contact ` + html.EscapeString(co.Name) +
		` directly at <a href="mailto:` + html.EscapeString(co.Email) + `">` + html.EscapeString(co.Email) + `</a>.</p>
</div></body></html>`

	text := fmt.Sprintf("Your Lesson is Confirmed! ✅\n\nGreat news, %s! You've successfully claimed this lesson slot:\n\n📅 %s\n👤 with %s\n%s\nIf you need to cancel or have questions, contact %s at %s.\n",
		cl.Name, when, co.Name, noteText, co.Name, co.Email)

	return email.SendRequest{
		To:      []string{cl.Email},
		Subject: fmt.Sprintf("✅ Lesson Confirmed with %s", co.Name),
		HTML:    htmlBody,
		Text:    text,
		ReplyTo: co.Email,
	}
}

// CoachNotification composes the email a coach receives when one of their
// slots is claimed.
// POST: Returns a ready SendRequest addressed to the coach
func CoachNotification(co coachDomain.Coach, cl clientDomain.Client, s slotDomain.Slot, baseURL string) email.SendRequest {
	when := FormatSlotTime(s.StartTime, s.EndTime, co.Timezone)
	dashboardURL := baseURL + "/dashboard"

	htmlBody := `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>` + emailStyle + `</style></head>
<body><div class="container">
<div class="header"><div style="font-size: 48px;">🎉</div><h1 style="color: #0066cc;">Your Slot Has Been Claimed!</h1></div>
<p>Good news! Your open lesson slot has been booked:</p>
<div style="background: #e8f4fd; border-radius: 8px; padding: 20px; border: 1px solid #0066cc;">
<div style="font-size: 20px; font-weight: 600;">` + html.EscapeString(cl.Name) + `</div>
<div style="color: #666; font-size: 14px;">` + html.EscapeString(cl.Email) + `</div>
<div style="margin-top: 12px;">📅 ` + html.EscapeString(when) + `</div>
</div>
<p>The client has been sent a confirmation email.</p>
<a href="` + dashboardURL + `" style="display: inline-block; background: #0066cc; color: white; text-decoration: none; padding: 12px 24px; border-radius: 8px;">View Dashboard</a>
</div></body></html>`

	text := fmt.Sprintf("Your Slot Has Been Claimed! 🎉\n\nGood news! Your open lesson slot has been booked:\n\n👤 %s (%s)\n📅 %s\n\nThe client has been sent a confirmation email.\n\nView your dashboard: %s\n",
		cl.Name, cl.Email, when, dashboardURL)

	return email.SendRequest{
		To:      []string{co.Email},
		Subject: fmt.Sprintf("🎉 Slot Claimed by %s", cl.Name),
		HTML:    htmlBody,
		Text:    text,
	}
}
