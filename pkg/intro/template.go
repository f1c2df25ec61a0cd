package intro

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const placeholder = "{first_name}"

// DefaultTemplate is the stock welcome message.
const DefaultTemplate = "Aloha {first_name}!\n\nWelcome to the community!\n\nHave a wonderful day!"

// Template renders a welcome message with the new member's first name
// substituted in.
type Template struct {
	text string
}

// NewTemplate validates a welcome message template. The template must
// contain the {first_name} placeholder exactly once.
func NewTemplate(s string) (Template, error) {
	if strings.TrimSpace(s) == "" {
		return Template{}, errors.New("welcome template is empty")
	}
	if n := strings.Count(s, placeholder); n != 1 {
		return Template{}, fmt.Errorf("welcome template must contain %s exactly once, found %d", placeholder, n)
	}
	return Template{text: s}, nil
}

// Render substitutes the title-cased first name into the template.
func (t Template) Render(firstName string) string {
	name := cases.Title(language.English).String(firstName)
	return strings.Replace(t.text, placeholder, name, 1)
}

// String returns the raw template text.
func (t Template) String() string { return t.text }
