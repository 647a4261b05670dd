package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// promptFreeForm runs a single-line text input for an open question.
func promptFreeForm(question string) (string, error) {
	ti := textinput.New()
	ti.Placeholder = "your answer"
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	m := freeFormModel{question: question, textInput: ti}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", fmt.Errorf("run answer input: %w", err)
	}

	result := final.(freeFormModel)
	if result.quit {
		return "", ErrCancelled
	}
	return strings.TrimSpace(result.value), nil
}

type freeFormModel struct {
	question  string
	textInput textinput.Model
	value     string
	quit      bool
}

func (m freeFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m freeFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			// An empty reply is not an answer; keep the input open.
			if strings.TrimSpace(m.textInput.Value()) == "" {
				return m, nil
			}
			m.value = m.textInput.Value()
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m freeFormModel) View() string {
	s := "\n" + StyleQuestion.Render(m.question) + "\n\n"
	s += StyleInputBox.Render(m.textInput.View()) + "\n\n"
	s += StyleSubtle.Render("enter to confirm - esc to cancel") + "\n"
	return s
}
