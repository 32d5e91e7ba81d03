package commands

import (
	"strings"
	"testing"

	"github.com/polarlauncher/polar/internals/autherr"
)

func TestFromDisplayable(t *testing.T) {
	d := autherr.Displayable{Title: "Sign-in Failed", Desc: "Please sign in again."}
	err := FromDisplayable(d, "Run `polar login` to sign in again.")

	if err.Error() != "Sign-in Failed" {
		t.Fatalf("unexpected error text %q", err.Error())
	}

	rendered := err.RichError()
	for _, want := range []string{"Sign-in Failed", "Please sign in again.", "Suggestion:", "polar login"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("rendered error is missing %q", want)
		}
	}
}

func TestCliError_SuggestionLabelPluralizes(t *testing.T) {
	e := &CliError{Text: "nope", Suggestions: []string{"check a", "check b"}}
	if !strings.Contains(e.RichError(), "Suggestions:") {
		t.Fatal("expected the plural suggestion label")
	}

	e = &CliError{Text: "nope"}
	if strings.Contains(e.RichError(), "Suggestion") {
		t.Fatal("no suggestions, no suggestion box")
	}
}
