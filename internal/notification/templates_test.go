package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildReminderMessagePreExpiry(t *testing.T) {
	expiry := time.Date(2024, time.January, 18, 0, 0, 0, 0, time.UTC)
	msg := BuildReminderMessage("Asha", expiry, 3)

	assert.Equal(t, "Subscription Reminder", msg.Subject)
	assert.Contains(t, msg.Text, "Hello Asha")
	assert.Contains(t, msg.Text, "will expire in 3 day(s) on Thu Jan 18 2024")
	assert.Contains(t, msg.HTML, "is about to expire")
	assert.Contains(t, msg.HTML, "<strong>Days Remaining:</strong> 3")
}

func TestBuildReminderMessageDayOfExpiry(t *testing.T) {
	expiry := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	msg := BuildReminderMessage("Asha", expiry, 0)

	assert.Contains(t, msg.Text, "expires today, Mon Jan 15 2024")
	assert.NotContains(t, msg.Text, "expired on")
	assert.NotContains(t, msg.Text, "will expire in")
	assert.Contains(t, msg.HTML, "expires today")
	assert.Contains(t, msg.HTML, "<strong>Days Remaining:</strong> 0")
}

func TestBuildReminderMessagePostExpiry(t *testing.T) {
	expiry := time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC)
	msg := BuildReminderMessage("Asha", expiry, -1)

	assert.Contains(t, msg.Text, "expired on Sun Jan 14 2024")
	assert.NotContains(t, msg.Text, "will expire")
	assert.Contains(t, msg.HTML, "has expired")
	assert.Contains(t, msg.HTML, "<strong>Days Remaining:</strong> Expired")
}

func TestBuildReminderMessageAllVariantsCarryIgnoreNote(t *testing.T) {
	expiry := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	for _, daysLeft := range []int{1, 0, -1} {
		msg := BuildReminderMessage("Asha", expiry, daysLeft)
		assert.Contains(t, msg.Text, "If you have already renewed, kindly ignore this message.")
		assert.Contains(t, msg.HTML, "If you have already renewed, kindly ignore this message.")
	}
}
