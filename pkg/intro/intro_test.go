package intro

import (
	"strings"
	"testing"
)

func TestIsIntroduction(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Hi everyone! I'm Jane, a product designer from Austin.", true},
		{"Hello everyone, excited to join this community", true},
		{"Hey all, long time lurker finally posting", true},
		{"My name is Bob and I run growth at a fintech", true},
		{"Quick introduction: data scientist, ten years in ads", true},
		{"Nice to meet you all!", true},
		{"So excited to be here!", true},
		{"I am a backend engineer at a logistics startup", true},
		{"I have been building marketplaces since 2015", true},
		{"PM based in Berlin, mostly consumer apps", true},
		{"Currently working on ML infrastructure", true},
		{"Fun fact: I once biked across Iceland", true},
		{"I'm a recovering consultant", true},
		{"HEY EVERYONE, happy friday", true},
		{"", false},
		{"Has anyone tried the new checkout flow?", false},
		{"Meeting moved to 3pm tomorrow", false},
		{"Congrats on the launch!", false},
		{"The weather in Austin is brutal this week", false},
		{"thanks, that fixed it", false},
		{"Does the anchor tag support this?", false},
		{"What does everyone think?", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsIntroduction(tt.text); got != tt.want {
				t.Errorf("IsIntroduction(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFirstName(t *testing.T) {
	tests := []struct {
		realName string
		username string
		want     string
	}{
		{"Jane Doe", "jdoe", "Jane"},
		{"Maksim Mazhov", "maksim", "Maksim"},
		{"Jean-Luc Picard", "jlp", "Jean-Luc"},
		{"  padded   name  ", "pad", "padded"},
		{"Solo", "solo", "Solo"},
		{"", "jdoe", "jdoe"},
		{"   ", "jdoe", "jdoe"},
		{"", "", "there"},
		{"  ", "", "there"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FirstName(tt.realName, tt.username, DefaultFallbackName, DefaultMaxNameLength)
			if got != tt.want {
				t.Errorf("FirstName(%q, %q) = %q, want %q", tt.realName, tt.username, got, tt.want)
			}
		})
	}
}

func TestFirstNameTruncation(t *testing.T) {
	tests := []struct {
		name     string
		realName string
		maxLen   int
		want     string
	}{
		{"ascii_truncated", "Wolfeschlegelsteinhausenbergerdorff Smith", 10, "Wolfeschle"},
		{"unicode_truncated", "Владимир Петров", 4, "Влад"},
		{"under_limit", "Jane Doe", 10, "Jane"},
		{"exact_limit", "Jane Doe", 4, "Jane"},
		{"zero_disables_limit", strings.Repeat("a", 80), 0, strings.Repeat("a", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstName(tt.realName, "user", DefaultFallbackName, tt.maxLen)
			if got != tt.want {
				t.Errorf("FirstName(%q, maxLen=%d) = %q, want %q", tt.realName, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNewTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{"valid", "Hi {first_name}!", false},
		{"multiline", "Aloha {first_name}!\n\nWelcome to the community!", false},
		{"empty", "", true},
		{"whitespace_only", "   \n\t", true},
		{"missing_placeholder", "Hello friend, welcome!", true},
		{"duplicate_placeholder", "Hi {first_name} {first_name}!", true},
		{"malformed_placeholder", "Hi {firstname}!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTemplate(tt.template)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTemplate(%q) error = %v, wantErr %v", tt.template, err, tt.wantErr)
			}
		})
	}
}

func TestTemplateRender(t *testing.T) {
	tmpl, err := NewTemplate("Hi {first_name}!")
	if err != nil {
		t.Fatalf("NewTemplate() error = %v", err)
	}

	tests := []struct {
		firstName string
		want      string
	}{
		{"maria", "Hi Maria!"},
		{"JANE", "Hi Jane!"},
		{"Bob", "Hi Bob!"},
		{"there", "Hi There!"},
	}

	for _, tt := range tests {
		t.Run(tt.firstName, func(t *testing.T) {
			if got := tmpl.Render(tt.firstName); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.firstName, got, tt.want)
			}
		})
	}
}

func TestTemplateRenderMultiline(t *testing.T) {
	tmpl, err := NewTemplate("Aloha {first_name}!\n\nWelcome to the community!\n\nHave a wonderful day!")
	if err != nil {
		t.Fatalf("NewTemplate() error = %v", err)
	}

	got := tmpl.Render("petra")
	want := "Aloha Petra!\n\nWelcome to the community!\n\nHave a wonderful day!"
	if got != want {
		t.Errorf("Render(%q) = %q, want %q", "petra", got, want)
	}
}
