package outreach

import (
	"fmt"
	"strings"

	"github.com/yourusername/linkedin-outreach/internal/locator"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

// SendMessage opens a conversation from the profile page and sends text.
// {{name}} and {{company}} are filled from the last visit of the profile.
func (e *Executor) SendMessage(profileURL, text string) Result {
	profileURL = cleanProfileURL(profileURL)

	if !e.ledger.CanPerform(quota.Messages) {
		return e.finish(ActionMessage, profileURL, StatusLimitReached, "daily message limit reached")
	}

	logger.Info("Sending message", "profile_url", profileURL)

	text = RenderMessage(text, e.profiles[profileURL])

	if err := e.driver.Navigate(profileURL); err != nil {
		return e.fail(ActionMessage, profileURL, "navigate to profile", err)
	}
	e.pause(beforeActionDelay)

	button, ok := e.loc.Resolve(locator.Chain(e.sel.MessageButton))
	if !ok {
		return e.finish(ActionMessage, profileURL, StatusNotFound, "no message control")
	}
	if err := e.driver.Click(button); err != nil {
		return e.fail(ActionMessage, profileURL, "click message", err)
	}
	e.pause(messageOpenDelay)

	input, ok := e.loc.Resolve(locator.Chain(e.sel.MessageInput))
	if !ok {
		return e.fail(ActionMessage, profileURL, "message field not found", nil)
	}
	if err := e.typeText(input, text); err != nil {
		return e.fail(ActionMessage, profileURL, "type message", err)
	}
	e.pause(afterTypingDelay)

	send, ok := e.loc.Resolve(locator.Chain(e.sel.MessageSend))
	if !ok {
		return e.fail(ActionMessage, profileURL, "send control not found", nil)
	}
	if err := e.driver.Click(send); err != nil {
		return e.fail(ActionMessage, profileURL, "click send", err)
	}
	e.pause(confirmDelay)

	e.ledger.Record(quota.Messages)
	res := e.finish(ActionMessage, profileURL, StatusSent, fmt.Sprintf("length=%d", len([]rune(text))))

	e.pause(e.opts.AfterMessage)
	return res
}

// RenderMessage fills message placeholders, leaving plain text untouched
func RenderMessage(text string, p ProfileInfo) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return Personalize(text, p)
}
