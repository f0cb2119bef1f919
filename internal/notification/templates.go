package notification

import (
	"fmt"
	"time"
)

const reminderSubject = "Subscription Reminder"

// BuildReminderMessage renders the reminder content for a subscriber. The
// wording has three variants keyed on daysLeft: pre-expiry (> 0), day-of
// (== 0) and post-expiry; the same Message feeds both channels, email uses
// HTML and WhatsApp uses Text.
func BuildReminderMessage(name string, expiryDate time.Time, daysLeft int) Message {
	expiry := expiryDate.Format("Mon Jan 2 2006")

	var text string
	switch {
	case daysLeft > 0:
		text = fmt.Sprintf(`Hello %s

Your library subscription will expire in %d day(s) on %s.

Please renew your subscription to continue uninterrupted access.

If you have already renewed, kindly ignore this message.

- NextStep Team`, name, daysLeft, expiry)
	case daysLeft == 0:
		text = fmt.Sprintf(`Hello %s

Your library subscription expires today, %s.

Please renew your subscription to continue uninterrupted access.

If you have already renewed, kindly ignore this message.

- NextStep Team`, name, expiry)
	default:
		text = fmt.Sprintf(`Hello %s

Your library subscription expired on %s.

Please renew as soon as possible to avoid service interruption.

If you have already renewed, kindly ignore this message.

- NextStep Team`, name, expiry)
	}

	var state, remaining string
	switch {
	case daysLeft > 0:
		state = "is about to expire"
		remaining = fmt.Sprintf("%d", daysLeft)
	case daysLeft == 0:
		state = "expires today"
		remaining = "0"
	default:
		state = "has expired"
		remaining = "Expired"
	}

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; line-height:1.6; color:#333;">
  <h2 style="color:#111;">Subscription Reminder</h2>
  <p>Hello <strong>%s</strong>,</p>
  <p>This is a gentle reminder that your library subscription <strong>%s</strong>.</p>
  <p>
    <strong>Expiry Date:</strong> %s <br/>
    <strong>Days Remaining:</strong> %s
  </p>
  <p>To continue enjoying uninterrupted services, please renew your subscription at your earliest convenience.</p>
  <p style="background:#f5f5f5;padding:12px;border-radius:6px;">If you have already renewed, kindly ignore this message.</p>
  <p>For any assistance, feel free to contact the library admin.</p>
  <br/>
  <p>Regards,<br/><strong>NextStep Library</strong></p>
</div>`, name, state, expiry, remaining)

	return Message{
		Subject: reminderSubject,
		Text:    text,
		HTML:    html,
	}
}
