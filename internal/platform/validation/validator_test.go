package validation

import (
	"strings"
	"testing"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/domain/apperr"
)

type signup struct {
	Email    string `validate:"required,email"`
	FullName string `validate:"required,max=10"`
	Kind     string `validate:"oneof=contact quote"`
}

func TestStructReportsEveryField(t *testing.T) {
	t.Parallel()

	err := Struct(signup{Email: "nope", FullName: "", Kind: "other"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !eris.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid kind, got %v", err)
	}

	msg := apperr.Message(err)
	for _, want := range []string{"email must be a valid email address", "full_name is required", "kind must be one of [contact quote]"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	t.Parallel()

	if err := Struct(signup{Email: "a@b.co", FullName: "Ada", Kind: "quote"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestEmailAndURLHelpers(t *testing.T) {
	t.Parallel()

	if !Email("hello@eduvista.com") || Email("hello") {
		t.Fatalf("unexpected email validation result")
	}
	if !URL("https://eduvista.com/a.png") || URL("a.png") {
		t.Fatalf("unexpected url validation result")
	}
}

func TestToSnake(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"FullName":    "full_name",
		"Email":       "email",
		"ScheduledAt": "scheduled_at",
		"AvatarURL":   "avatar_url",
	}
	for in, want := range cases {
		if got := toSnake(in); got != want {
			t.Fatalf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
