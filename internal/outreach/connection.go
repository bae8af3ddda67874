package outreach

import (
	"fmt"

	"github.com/yourusername/linkedin-outreach/internal/browser"
	"github.com/yourusername/linkedin-outreach/internal/locator"
	"github.com/yourusername/linkedin-outreach/internal/logger"
	"github.com/yourusername/linkedin-outreach/internal/quota"
)

// SendConnection visits a profile and sends a connection request. An empty
// note lets the executor compose one when the note dialog is offered.
func (e *Executor) SendConnection(profileURL, note string) Result {
	profileURL = cleanProfileURL(profileURL)

	if !e.ledger.CanPerform(quota.Connections) {
		return e.finish(ActionConnect, profileURL, StatusLimitReached, "daily connection limit reached")
	}

	logger.Info("Sending connection request", "profile_url", profileURL)

	info, err := e.visit(profileURL)
	if err != nil {
		return e.fail(ActionConnect, profileURL, "navigate to profile", err)
	}
	e.pause(beforeActionDelay)

	connect, ok := e.loc.Resolve(locator.Chain(e.sel.Connect))
	if !ok {
		connect, ok = e.connectFromMoreMenu()
	}
	if !ok {
		if _, engaged := e.loc.ResolveAny(locator.Chain(e.sel.AlreadyConnected)); engaged {
			return e.finish(ActionConnect, profileURL, StatusAlreadyDone, "already connected")
		}
		return e.finish(ActionConnect, profileURL, StatusNotFound, "no connect control")
	}

	if err := e.driver.Click(connect); err != nil {
		return e.fail(ActionConnect, profileURL, "click connect", err)
	}
	e.pause(modalDelay)

	noteAdded, err := e.addNote(note, info)
	if err != nil {
		return e.fail(ActionConnect, profileURL, "type note", err)
	}

	send, ok := e.loc.Resolve(locator.Chain(e.sel.SendInvite))
	if !ok {
		return e.fail(ActionConnect, profileURL, "send control not found", nil)
	}
	if err := e.driver.Click(send); err != nil {
		return e.fail(ActionConnect, profileURL, "click send", err)
	}
	e.pause(confirmDelay)

	e.ledger.Record(quota.Connections)
	res := e.finish(ActionConnect, profileURL, StatusSent, fmt.Sprintf("name=%q note=%t", info.Name, noteAdded))

	e.pause(e.opts.AfterConnect)
	return res
}

// connectFromMoreMenu opens the "More" menu and looks for a connect item
func (e *Executor) connectFromMoreMenu() (browser.Element, bool) {
	more, ok := e.loc.Resolve(locator.Chain(e.sel.MoreActions))
	if !ok {
		return nil, false
	}

	logger.Debug("Trying More menu for connect option")
	if err := e.driver.Click(more); err != nil {
		logger.Debug("Failed to open More menu", "error", err)
		return nil, false
	}
	e.pause(modalDelay)

	return e.loc.Resolve(locator.Chain(e.sel.MenuConnect))
}

// addNote fills the optional note dialog. A dialog that is not offered
// or cannot be opened means no note. Only a typing failure is an error.
func (e *Executor) addNote(note string, info ProfileInfo) (bool, error) {
	addNote, ok := e.loc.Resolve(locator.Chain(e.sel.AddNote))
	if !ok {
		return false, nil
	}

	if note == "" {
		if e.human.Float64() >= e.opts.PersonalizationRate {
			return false, nil
		}
		note = ComposeNote(e.opts.NoteTemplates, info, e.human.Intn)
	}
	if note == "" {
		return false, nil
	}
	note = TruncateNote(note)

	if err := e.driver.Click(addNote); err != nil {
		logger.Debug("Could not open note dialog, sending without note", "error", err)
		return false, nil
	}
	e.pause(noteButtonDelay)

	input, ok := e.loc.Resolve(locator.Chain(e.sel.NoteInput))
	if !ok {
		logger.Debug("Note field not found, sending without note")
		return false, nil
	}

	if err := e.typeText(input, note); err != nil {
		return false, err
	}
	e.pause(afterTypingDelay)
	return true, nil
}
