package outreach

import (
	"strings"

	"github.com/yourusername/linkedin-outreach/internal/config"
)

// MaxNoteLength is LinkedIn's character limit for connection notes
const MaxNoteLength = 300

const defaultCompany = "your industry"

// FirstName returns the first word of the profile name
func (p ProfileInfo) FirstName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Company returns whatever follows the last " at " of the headline
func (p ProfileInfo) Company() string {
	i := strings.LastIndex(p.Title, " at ")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(p.Title[i+len(" at "):])
}

// Personalize fills {{name}} and {{company}} from the profile
func Personalize(template string, p ProfileInfo) string {
	company := p.Company()
	if company == "" {
		company = defaultCompany
	}

	out := config.ParseTemplate(template, map[string]string{
		"name":    p.FirstName(),
		"company": company,
	})
	// "Hi , thanks" when the name is unknown
	out = strings.ReplaceAll(out, " ,", ",")
	out = strings.ReplaceAll(out, " !", "!")
	return strings.TrimSpace(out)
}

// ComposeNote picks a template with pick and personalizes it
func ComposeNote(templates []string, p ProfileInfo, pick func(n int) int) string {
	if len(templates) == 0 {
		return ""
	}
	return TruncateNote(Personalize(templates[pick(len(templates))], p))
}

// TruncateNote cuts a note to MaxNoteLength characters
func TruncateNote(note string) string {
	runes := []rune(note)
	if len(runes) <= MaxNoteLength {
		return note
	}
	return string(runes[:MaxNoteLength])
}
