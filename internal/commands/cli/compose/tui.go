package compose

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrei-cloud/go_arv/internal/encode"
)

const (
	fieldTypeRadio = iota
	fieldTypeNumeric
)

type option struct {
	value       int64
	label       string
	description string
}

type fieldConfig struct {
	name         string
	description  string
	fieldType    int
	options      []option // For radio fields.
	selected     int      // For radio fields.
	numericValue string   // For numeric fields.
	minValue     int64    // For numeric fields.
	maxValue     int64    // For numeric fields.
}

// composeModel walks the user through a kind and its detail parameters.
// Field 0 is always the kind; the rest follow the selected kind.
type composeModel struct {
	kinds        []encode.Kind
	currentField int
	fields       []fieldConfig
	word         uint32
	err          error
	done         bool
	cancelled    bool
}

// newComposeModel creates a new TUI model for building a status word.
func newComposeModel() composeModel {
	kinds := encode.Kinds()
	opts := make([]option, len(kinds))
	for i, k := range kinds {
		opts[i] = option{
			value:       int64(k.Code),
			label:       k.Name(),
			description: k.Code.Description(),
		}
	}

	m := composeModel{
		kinds: kinds,
		fields: []fieldConfig{{
			name:        "Kind",
			description: "Verification error kind",
			fieldType:   fieldTypeRadio,
			options:     opts,
		}},
	}
	m.syncParamFields()

	return m
}

// selectedKind returns the kind chosen in field 0.
func (m *composeModel) selectedKind() encode.Kind {
	return m.kinds[m.fields[0].selected]
}

// syncParamFields rebuilds the parameter fields for the selected kind.
func (m *composeModel) syncParamFields() {
	kind := m.selectedKind()
	fields := []fieldConfig{m.fields[0]}
	for _, p := range kind.Params {
		f := fieldConfig{name: p.Name, description: p.Description}
		if len(p.Options) > 0 {
			f.fieldType = fieldTypeRadio
			for _, o := range p.Options {
				f.options = append(f.options, option{value: o.Value, label: strconv.FormatInt(o.Value, 10), description: o.Label})
			}
		} else {
			f.fieldType = fieldTypeNumeric
			f.minValue = p.Min
			f.maxValue = p.Max
			f.numericValue = strconv.FormatInt(p.Default(), 10)
		}
		fields = append(fields, f)
	}
	m.fields = fields
	m.err = nil
}

// values collects the parameter values entered so far.
func (m *composeModel) values() map[string]int64 {
	values := make(map[string]int64, len(m.fields)-1)
	for _, f := range m.fields[1:] {
		if f.fieldType == fieldTypeRadio {
			values[f.name] = f.options[f.selected].value
		} else {
			values[f.name] = m.parseNumericValue(f.numericValue)
		}
	}

	return values
}

// build encodes the current selection, recording any error.
func (m *composeModel) build() bool {
	verr, err := m.selectedKind().Build(m.values())
	if err != nil {
		m.err = err

		return false
	}
	m.word = verr.Uint32()
	m.err = nil

	return true
}

// Init initializes the model.
func (m composeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m composeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		currentField := &m.fields[m.currentField]

		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true

			return m, tea.Quit
		case "enter":
			if m.currentField >= len(m.fields)-1 {
				if m.build() {
					m.done = true

					return m, tea.Quit
				}

				return m, nil
			}
			m.currentField++
		case "tab":
			// Move to next field.
			if m.currentField < len(m.fields)-1 {
				m.currentField++
			}
		case "shift+tab":
			// Move to previous field.
			if m.currentField > 0 {
				m.currentField--
			}
		case "up", "k":
			if currentField.fieldType == fieldTypeRadio {
				if currentField.selected > 0 {
					currentField.selected--
					m.afterSelect()
				}
			} else {
				m.incrementNumericValue(1)
			}
		case "down", "j":
			if currentField.fieldType == fieldTypeRadio {
				if currentField.selected < len(currentField.options)-1 {
					currentField.selected++
					m.afterSelect()
				}
			} else {
				m.decrementNumericValue(1)
			}
		case "backspace":
			if currentField.fieldType == fieldTypeNumeric {
				m.handleBackspace()
			}
		default:
			// Handle numeric input for numeric fields.
			if currentField.fieldType == fieldTypeNumeric && len(msg.String()) == 1 {
				if char := msg.String()[0]; char >= '0' && char <= '9' {
					m.handleNumericInput(char)
				}
			}
		}
	}

	return m, nil
}

// afterSelect rebuilds the parameter fields when the kind changes.
func (m *composeModel) afterSelect() {
	if m.currentField == 0 {
		m.syncParamFields()
	}
}

// incrementNumericValue increases the numeric value by the specified amount.
func (m *composeModel) incrementNumericValue(amount int64) {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	newValue := m.parseNumericValue(currentField.numericValue) + amount
	if newValue <= currentField.maxValue {
		currentField.numericValue = strconv.FormatInt(newValue, 10)
	}
}

// decrementNumericValue decreases the numeric value by the specified amount.
func (m *composeModel) decrementNumericValue(amount int64) {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	newValue := m.parseNumericValue(currentField.numericValue) - amount
	if newValue >= currentField.minValue {
		currentField.numericValue = strconv.FormatInt(newValue, 10)
	}
}

// handleNumericInput appends a typed digit if the result stays in range.
func (m *composeModel) handleNumericInput(char byte) {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	currentValue := strings.TrimLeft(currentField.numericValue, "0")
	newValue := m.parseNumericValue(currentValue + string(char))

	if newValue >= currentField.minValue && newValue <= currentField.maxValue {
		currentField.numericValue = strconv.FormatInt(newValue, 10)
	}
}

// handleBackspace removes the last digit from the numeric input.
func (m *composeModel) handleBackspace() {
	currentField := &m.fields[m.currentField]
	if currentField.fieldType != fieldTypeNumeric {
		return
	}

	valueStr := currentField.numericValue
	if len(valueStr) <= 1 {
		currentField.numericValue = strconv.FormatInt(currentField.minValue, 10)

		return
	}
	currentField.numericValue = valueStr[:len(valueStr)-1]
}

// parseNumericValue converts a string to an integer.
func (m *composeModel) parseNumericValue(value string) int64 {
	if value == "" {
		return 0
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}

	return parsed
}

// View renders the current state of the model.
func (m composeModel) View() string {
	if m.done {
		return fmt.Sprintf("Status word: 0x%08x\n", m.word)
	}

	if m.cancelled {
		return "Operation cancelled.\n"
	}

	s := "Compose Verification Status\n"
	s += strings.Repeat("=", 50) + "\n\n"

	// Show progress.
	s += fmt.Sprintf("Field %d of %d\n\n", m.currentField+1, len(m.fields))

	// Show current field.
	currentField := m.fields[m.currentField]
	s += fmt.Sprintf("▶ %s: %s\n\n", currentField.name, currentField.description)

	if currentField.fieldType == fieldTypeRadio {
		for j, option := range currentField.options {
			selector := "  ○ "
			if j == currentField.selected {
				selector = "  ● "
			}
			s += fmt.Sprintf("%s%s - %s\n", selector, option.label, option.description)
		}
	} else {
		v := m.parseNumericValue(currentField.numericValue)
		s += fmt.Sprintf("  [ %s ] = 0x%x (Range: %d-%d)\n",
			currentField.numericValue, v, currentField.minValue, currentField.maxValue)
	}

	s += "\n"

	// Show summary of completed fields.
	if m.currentField > 0 {
		s += "Completed fields:\n"
		for i := 0; i < m.currentField; i++ {
			field := m.fields[i]
			if field.fieldType == fieldTypeRadio {
				s += fmt.Sprintf("  %s: %s\n", field.name, field.options[field.selected].label)
			} else {
				s += fmt.Sprintf("  %s: %s\n", field.name, field.numericValue)
			}
		}
		s += "\n"
	}

	if m.err != nil {
		s += fmt.Sprintf("Error: %v\n\n", m.err)
	}

	s += "Navigation:\n"
	s += "  ↑/↓ or j/k: Select option or increment/decrement value\n"
	s += "  Tab/Shift+Tab: Next/Previous field\n"
	s += "  Enter: Confirm and continue\n"
	if currentField.fieldType == fieldTypeNumeric {
		s += "  0-9: Direct numeric input\n"
		s += "  Backspace: Delete digit\n"
	}
	s += "  q or Ctrl+C: Quit\n"

	return s
}

// runComposeTUI starts the interactive TUI and returns the composed word.
func runComposeTUI() (uint32, bool, error) {
	p := tea.NewProgram(newComposeModel())
	finalModel, err := p.Run()
	if err != nil {
		return 0, false, err
	}

	m := finalModel.(composeModel)

	return m.word, m.done, nil
}
