package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfl/ghlite/internal/config"
)

// SettingsModel edits the stored credentials. Saving goes through the
// credential store, whose change notification reaches the engine; the app
// then starts a fresh sync.
type SettingsModel struct {
	store *config.Store

	usernameIn textinput.Model
	tokenIn    textinput.Model
	tokenFocus bool
	errorMsg   string
}

// NewSettingsModel creates the settings form pre-filled from the store.
func NewSettingsModel(store *config.Store) SettingsModel {
	creds := store.Load()

	user := textinput.New()
	user.Placeholder = "GitHub username"
	user.CharLimit = 64
	user.Width = 40
	user.SetValue(creds.Username)
	user.Focus()

	token := textinput.New()
	token.Placeholder = "Personal access token"
	token.CharLimit = 255
	token.Width = 40
	token.SetValue(creds.Token)
	// The token is a secret; never render it in clear text.
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'

	return SettingsModel{
		store:      store,
		usernameIn: user,
		tokenIn:    token,
	}
}

// Init initializes the model.
func (m SettingsModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model state.
func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackMsg{} }

		case "tab", "shift+tab", "enter":
			m.tokenFocus = !m.tokenFocus
			if m.tokenFocus {
				m.usernameIn.Blur()
				return m, m.tokenIn.Focus()
			}
			m.tokenIn.Blur()
			return m, m.usernameIn.Focus()

		case "ctrl+s":
			creds := config.Credentials{
				Username: strings.TrimSpace(m.usernameIn.Value()),
				Token:    strings.TrimSpace(m.tokenIn.Value()),
			}
			if creds.Username == "" {
				m.errorMsg = "Username is required"
				return m, nil
			}
			err := m.store.Save(creds)
			return m, func() tea.Msg { return SettingsSavedMsg{Err: err} }
		}

	case SettingsSavedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.tokenFocus {
		m.tokenIn, cmd = m.tokenIn.Update(msg)
	} else {
		m.usernameIn, cmd = m.usernameIn.Update(msg)
	}
	return m, cmd
}

// View renders the model.
func (m SettingsModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("Username"))
	b.WriteString("\n" + m.usernameIn.View() + "\n\n")
	b.WriteString(DimStyle.Render("Token (stored in clear text in " + m.store.Path() + ")"))
	b.WriteString("\n" + m.tokenIn.View() + "\n")
	b.WriteString(HelpStyle.Render("tab switch field · ctrl+s save · esc back"))
	b.WriteString(DimStyle.Render("\n\nGenerate a token at github.com/settings/tokens"))
	if m.errorMsg != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.errorMsg))
	}
	return b.String()
}
