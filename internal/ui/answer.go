package ui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"clarion/internal/schema"
)

// ErrCancelled is returned when the user dismisses a prompt without
// answering.
var ErrCancelled = errors.New("answer cancelled")

// AskClarification presents a clarification message and collects the
// answer: a picker when the message carries options, a free-form input
// otherwise.
func AskClarification(msg *schema.ClarificationMessage) (string, error) {
	if msg.FreeForm() {
		return promptFreeForm(msg.Message)
	}
	return promptOption(msg.Message, msg.Options)
}

// promptOption runs the option picker.
func promptOption(question string, options []string) (string, error) {
	m := optionSelectModel{question: question, options: options}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", fmt.Errorf("run option picker: %w", err)
	}

	result := final.(optionSelectModel)
	if result.quit {
		return "", ErrCancelled
	}
	return result.selected, nil
}

type optionSelectModel struct {
	question string
	options  []string
	cursor   int
	selected string
	quit     bool
}

func (m optionSelectModel) Init() tea.Cmd {
	return nil
}

func (m optionSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quit = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.options[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m optionSelectModel) View() string {
	s := "\n" + StyleQuestion.Render(m.question) + "\n\n"

	for i, opt := range m.options {
		cursor := "  "
		style := StyleOptionNormal
		if m.cursor == i {
			cursor = "> "
			style = StyleOptionActive
		}
		s += cursor + style.Render(opt) + "\n"
	}

	s += "\n" + StyleSubtle.Render("up/down navigate - enter select - esc cancel") + "\n"
	return s
}
