package config

// Selectors holds every selector chain the bot resolves, most specific
// candidate first. Strings starting with "/" or "(" are XPath, anything
// else is CSS. Overriding a chain in the file replaces it wholesale.
type Selectors struct {
	LoginEmail    []string `yaml:"login_email"`
	LoginPassword []string `yaml:"login_password"`
	LoginSubmit   []string `yaml:"login_submit"`
	LoggedIn      []string `yaml:"logged_in"`
	Challenge     []string `yaml:"challenge"`

	PeopleFilter []string `yaml:"people_filter"`
	ProfileLinks []string `yaml:"profile_links"`
	NextPage     []string `yaml:"next_page"`

	ProfileName     []string `yaml:"profile_name"`
	ProfileTitle    []string `yaml:"profile_title"`
	ProfileLocation []string `yaml:"profile_location"`

	Connect          []string `yaml:"connect"`
	MoreActions      []string `yaml:"more_actions"`
	MenuConnect      []string `yaml:"menu_connect"`
	AlreadyConnected []string `yaml:"already_connected"`
	AddNote          []string `yaml:"add_note"`
	NoteInput        []string `yaml:"note_input"`
	SendInvite       []string `yaml:"send_invite"`

	MessageButton []string `yaml:"message_button"`
	MessageInput  []string `yaml:"message_input"`
	MessageSend   []string `yaml:"message_send"`
}

// DefaultSelectors covers both the Spanish and the English interface
func DefaultSelectors() Selectors {
	return Selectors{
		LoginEmail:    []string{"#username", "input[name='session_key']"},
		LoginPassword: []string{"#password", "input[name='session_password']"},
		LoginSubmit:   []string{`//button[@type="submit"]`, "button[type='submit']"},
		LoggedIn:      []string{"#global-nav", ".global-nav__me", "a[href*='/feed/']"},
		Challenge: []string{
			"#input__phone_verification_pin",
			"input[name='pin']",
			"#two-step-challenge",
			"#captcha-internal",
		},

		PeopleFilter: []string{
			`//button[contains(@aria-label, "Personas")]`,
			`//button[contains(@aria-label, "People")]`,
			`//button[text()="People"]`,
		},
		ProfileLinks: []string{
			`//a[contains(@href, "/in/") and @tabindex="0"]`,
			"a[href^='https://www.linkedin.com/in/']",
			"a.app-aware-link[href*='/in/']",
		},
		NextPage: []string{
			`//button[@aria-label="Siguiente"]`,
			"button[aria-label='Next']",
			"button.artdeco-pagination__button--next",
		},

		ProfileName:  []string{`//h1[contains(@class, "text-heading")]`, "h1"},
		ProfileTitle: []string{`//div[contains(@class, "text-body-medium")]`},
		ProfileLocation: []string{
			`//div[contains(@class, "pv-text-details__left-panel")]//span[contains(@class, "text-body-small")]`,
			`//div[contains(@class, "pv-top-card")]//span[contains(@class, "text-body-small")]`,
			`//span[contains(@class, "text-body-small")]`,
		},

		Connect: []string{
			`//button[contains(@aria-label, "Invitar")]`,
			`//span[text()="Conectar"]/ancestor::button`,
			`//button[span[text()="Connect"]]`,
			`//button[contains(@class, "pv-s-profile-actions")]//span[text()="Connect"]/..`,
			`//button[contains(@aria-label, "Connect")]`,
		},
		MoreActions: []string{
			"button[aria-label='More actions']",
			`//button[contains(@aria-label, "Más acciones")]`,
			"button[aria-label*='More']",
		},
		MenuConnect: []string{
			`//div[contains(@class, "artdeco-dropdown__content")]//div[@role="button"][contains(@aria-label, "Invit")]`,
			`//div[contains(@class, "artdeco-dropdown__content")]//span[text()="Connect"]/ancestor::div[@role="button"]`,
			`//div[contains(@class, "artdeco-dropdown__content")]//span[text()="Conectar"]/ancestor::div[@role="button"]`,
		},
		AlreadyConnected: []string{
			`//span[text()="Enviar mensaje"]`,
			`//span[text()="Send message"]`,
			`//span[contains(text(), "Ya están conectados")]`,
			`//span[contains(text(), "Message")]`,
		},
		AddNote: []string{
			`//button[@aria-label="Añadir una nota"]`,
			"button[aria-label='Add a note']",
			`//button[span[text()="Add a note"]]`,
		},
		NoteInput: []string{
			`//textarea[@name="message"]`,
			"textarea#custom-message",
			"textarea[aria-label*='note']",
		},
		SendInvite: []string{
			`//button[@aria-label="Enviar ahora"]`,
			"button[aria-label='Send now']",
			"button[aria-label='Send invitation']",
			"button[aria-label*='Send']",
		},

		MessageButton: []string{
			`//button[contains(@aria-label, "Enviar mensaje")]`,
			`//button[span[text()="Enviar mensaje"]]`,
			`//button[span[text()="Message"]]`,
			"button[aria-label*='Message']",
		},
		MessageInput: []string{
			`//div[@role="textbox"]`,
			"div.msg-form__contenteditable",
			"div[role='textbox'][aria-label*='Write a message']",
		},
		MessageSend: []string{
			"button.msg-form__send-button",
			`//button[@type="submit"]`,
			"button[type='submit'][aria-label*='Send']",
		},
	}
}
