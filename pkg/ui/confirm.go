package ui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is a simple yes/no confirmation dialog.
type confirmModel struct {
	question  string
	confirmed bool
	done      bool
}

// Init implements tea.Model.
func (m confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "n", "N", "enter", "esc", "q", "ctrl+c":
			m.confirmed = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m confirmModel) View() string {
	if m.done {
		answer := "no"
		if m.confirmed {
			answer = "yes"
		}
		return fmt.Sprintf("\n%s %s\n", TitleStyle.UnsetMarginBottom().Render(m.question), DimStyle.Render(answer))
	}
	return fmt.Sprintf("\n%s\n%s ",
		TitleStyle.UnsetMarginBottom().Render(m.question),
		DimStyle.Render("[y/N]"),
	)
}

// Confirm displays a confirmation prompt and returns the user's choice.
func Confirm(question string, in io.Reader, out io.Writer) (bool, error) {
	m := confirmModel{question: question}
	p := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirm dialog failed: %w", err)
	}
	return result.(confirmModel).confirmed, nil
}
