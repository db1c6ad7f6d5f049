package usecase

import (
	"context"
	"errors"
	"testing"

	"webexbot/internal/domain"
)

type nopHandler struct{}

func (nopHandler) Handle(context.Context, domain.Messenger, domain.Message, []domain.ArgBinding, []domain.ArgBinding) {
}

func newTestParser() *Parser {
	p := NewParser()
	p.AddCommand("roll", []domain.ArgumentSpec{domain.RequiredArg("sides")}, nopHandler{})
	p.AddCommand("poll", []domain.ArgumentSpec{
		domain.RequiredArg("topic"),
		domain.OptionalArg("duration"),
	}, nopHandler{})
	p.AddCommand("ping", nil, nopHandler{})
	return p
}

func TestParseBindsRequiredArgument(t *testing.T) {
	parsed, err := newTestParser().Parse("@bot roll 20")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Command != "roll" {
		t.Errorf("Command = %q, want roll", parsed.Command)
	}
	if len(parsed.Required) != 1 || parsed.Required[0] != (domain.ArgBinding{Name: "sides", Value: "20"}) {
		t.Errorf("Required = %v, want [{sides 20}]", parsed.Required)
	}
	if len(parsed.Optional) != 0 {
		t.Errorf("Optional = %v, want empty", parsed.Optional)
	}
}

func TestParsePartitionsBindings(t *testing.T) {
	parsed, err := newTestParser().Parse("@bot poll budget 5m")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed.Required) != 1 || parsed.Required[0].Value != "budget" {
		t.Errorf("Required = %v", parsed.Required)
	}
	if len(parsed.Optional) != 1 || parsed.Optional[0] != (domain.ArgBinding{Name: "duration", Value: "5m"}) {
		t.Errorf("Optional = %v", parsed.Optional)
	}
}

func TestParseMissingArguments(t *testing.T) {
	// poll registers two descriptors but only one token follows the keyword.
	_, err := newTestParser().Parse("@bot poll budget")
	if !errors.Is(err, domain.ErrMissingArguments) {
		t.Errorf("err = %v, want ErrMissingArguments", err)
	}
}

func TestParseTooFewTokens(t *testing.T) {
	for _, text := range []string{"", "   ", "@bot", "hello"} {
		_, err := newTestParser().Parse(text)
		if !errors.Is(err, domain.ErrNoCommand) {
			t.Errorf("Parse(%q) err = %v, want ErrNoCommand", text, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := newTestParser().Parse("@bot frobnicate now")
	if !errors.Is(err, domain.ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestParseExtraTokensIgnored(t *testing.T) {
	parsed, err := newTestParser().Parse("@bot roll 6 and some trailing words")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(parsed.Required) + len(parsed.Optional); got != 1 {
		t.Errorf("bound %d arguments, want exactly 1", got)
	}
	if parsed.Required[0].Value != "6" {
		t.Errorf("sides = %q, want 6", parsed.Required[0].Value)
	}
}

func TestParseZeroArgCommand(t *testing.T) {
	parsed, err := newTestParser().Parse("@bot ping")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Command != "ping" {
		t.Errorf("Command = %q", parsed.Command)
	}
}

func TestParseCollapsesWhitespace(t *testing.T) {
	parsed, err := newTestParser().Parse("  @bot\t\troll \n 12  ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Required[0].Value != "12" {
		t.Errorf("sides = %q, want 12", parsed.Required[0].Value)
	}
}

func TestParsePreservesRegistrationOrder(t *testing.T) {
	p := NewParser()
	p.AddCommand("deploy", []domain.ArgumentSpec{
		domain.RequiredArg("service"),
		domain.OptionalArg("region"),
		domain.RequiredArg("version"),
		domain.OptionalArg("canary"),
	}, nopHandler{})

	parsed, err := p.Parse("@bot deploy api us-east 1.4.2 yes")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantRequired := []domain.ArgBinding{
		{Name: "service", Value: "api"},
		{Name: "version", Value: "1.4.2"},
	}
	wantOptional := []domain.ArgBinding{
		{Name: "region", Value: "us-east"},
		{Name: "canary", Value: "yes"},
	}
	for i, want := range wantRequired {
		if parsed.Required[i] != want {
			t.Errorf("Required[%d] = %v, want %v", i, parsed.Required[i], want)
		}
	}
	for i, want := range wantOptional {
		if parsed.Optional[i] != want {
			t.Errorf("Optional[%d] = %v, want %v", i, parsed.Optional[i], want)
		}
	}
}

func TestAddCommandReplacesKeyword(t *testing.T) {
	p := newTestParser()
	p.AddCommand("roll", []domain.ArgumentSpec{
		domain.RequiredArg("sides"),
		domain.RequiredArg("count"),
	}, nopHandler{})

	_, err := p.Parse("@bot roll 20")
	if !errors.Is(err, domain.ErrMissingArguments) {
		t.Errorf("err = %v, want ErrMissingArguments after re-registration", err)
	}
}
