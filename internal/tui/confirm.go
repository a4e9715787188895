package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// confirmPrompt holds an action waiting on a yes/no answer.
type confirmPrompt struct {
	action Action
	yes    bool
}

func newConfirmPrompt(action Action) confirmPrompt {
	return confirmPrompt{action: action, yes: true}
}

// answer interprets a key press. done is true once the prompt is resolved;
// ok reports whether the action should run.
func (c *confirmPrompt) answer(keyStr string) (done, ok bool) {
	switch keyStr {
	case "y":
		return true, true
	case "n", keyEsc:
		return true, false
	case keyEnter:
		return true, c.yes
	case "left", "right", "h", "l", "tab":
		c.yes = !c.yes
	}
	return false, false
}

func (c confirmPrompt) overlay(width, height int) string {
	yes, no := modalButtonStyle, modalButtonSelectedStyle
	if c.yes {
		yes, no = no, yes
	}

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		modalTitleStyle.Render(c.action.Help),
		"",
		c.action.Confirm,
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, yes.Render("Yes"), "  ", no.Render("No")),
		modalHelpStyle.Render("y/n  ←/→ select  enter choose  esc cancel"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(body))
}
