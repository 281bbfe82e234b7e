package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindText     Kind = "text"
	KindDropdown Kind = "dropdown"
	KindRadio    Kind = "radio"
	KindCheckbox Kind = "checkbox"
)

// Control is the input a question is answered with. It is one of Text,
// Dropdown, Radio or Checkbox.
type Control interface {
	Kind() Kind
	Choices() []string
}

type Text struct{}

type Dropdown struct{ Options []string }

type Radio struct{ Options []string }

type Checkbox struct{ Options []string }

func (Text) Kind() Kind     { return KindText }
func (Dropdown) Kind() Kind { return KindDropdown }
func (Radio) Kind() Kind    { return KindRadio }
func (Checkbox) Kind() Kind { return KindCheckbox }

func (Text) Choices() []string       { return nil }
func (c Dropdown) Choices() []string { return c.Options }
func (c Radio) Choices() []string    { return c.Options }
func (c Checkbox) Choices() []string { return c.Options }

type Question struct {
	ID      string
	Text    string
	Control Control
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Control.Choices() {
		if o == option {
			return true
		}
	}
	return false
}

type questionJSON struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    Kind     `json:"type"`
	Options []string `json:"options,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionJSON{q.ID, q.Text, q.Control.Kind(), q.Control.Choices()})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.ID, q.Text = raw.ID, raw.Text
	switch raw.Type {
	case KindText:
		q.Control = Text{}
		return nil
	case KindDropdown:
		q.Control = Dropdown{raw.Options}
	case KindRadio:
		q.Control = Radio{raw.Options}
	case KindCheckbox:
		q.Control = Checkbox{raw.Options}
	default:
		return fmt.Errorf("question %s: unknown type %q", raw.ID, raw.Type)
	}
	if len(raw.Options) == 0 {
		return fmt.Errorf("question %s: %s without options", raw.ID, raw.Type)
	}
	return nil
}

// Answer holds a single value for text, dropdown and radio questions, or
// the list of checked options for checkbox questions.
type Answer struct {
	Value  string
	Values []string
	Multi  bool
}

func Single(v string) Answer {
	return Answer{Value: v}
}

func Multiple(vs ...string) Answer {
	return Answer{Values: append([]string{}, vs...), Multi: true}
}

func (a Answer) String() string {
	if a.Multi {
		return fmt.Sprint(a.Values)
	}
	return a.Value
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Values)
	}
	return json.Marshal(a.Value)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) > 0 && data[0] == '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		vs := make([]string, 0, len(raw))
		for _, v := range raw {
			switch v := v.(type) {
			case string:
				vs = append(vs, v)
			case nil:
			default:
				// coerced by the sheet, like scalar answers
				vs = append(vs, fmt.Sprint(v))
			}
		}
		*a = Multiple(vs...)
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*a = Single(v)
	case bytes.Equal(data, []byte("null")):
		*a = Answer{}
	default:
		// numbers and booleans the sheet may have coerced
		*a = Single(string(data))
	}
	return nil
}

type Responses map[string]Answer
