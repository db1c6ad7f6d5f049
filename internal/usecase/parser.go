// Package usecase holds the bot's application logic: turning raw message
// text into registered commands and driving handler dispatch for both the
// webhook and realtime event paths.
package usecase

import (
	"sort"
	"strings"
	"sync"

	"webexbot/internal/domain"
)

// Parser matches incoming message text against registered commands.
//
// The grammar is deliberately small: tokens split on whitespace, the first
// token is the bot mention, the second is the command keyword, and the rest
// bind positionally to the command's argument descriptors. Runs of
// whitespace collapse, so there are never empty tokens.
type Parser struct {
	mu       sync.RWMutex
	commands map[string]*registeredCommand
}

type registeredCommand struct {
	keyword string
	args    []domain.ArgumentSpec
	handler domain.Handler
}

// NewParser creates an empty command table.
func NewParser() *Parser {
	return &Parser{commands: make(map[string]*registeredCommand)}
}

// AddCommand registers a command keyword with its argument descriptors.
// Registering the same keyword again replaces the earlier entry.
func (p *Parser) AddCommand(keyword string, args []domain.ArgumentSpec, handler domain.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands[keyword] = &registeredCommand{
		keyword: keyword,
		args:    args,
		handler: handler,
	}
}

// Commands returns the registered keywords, sorted. Intended for help output.
func (p *Parser) Commands() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keywords := make([]string, 0, len(p.commands))
	for k := range p.commands {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// Parse tokenizes text and resolves it to a registered command.
//
// Errors are ordered: too few tokens is ErrNoCommand, an unregistered
// keyword is ErrUnknownCommand, and fewer argument tokens than descriptors
// is ErrMissingArguments. Tokens beyond the descriptor count are ignored.
// Bindings preserve registration order within the required and optional
// partitions.
func (p *Parser) Parse(text string) (*domain.ParsedCommand, error) {
	const op = "Parser.Parse"

	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return nil, domain.NewDomainError(op, domain.ErrNoCommand, text)
	}

	keyword := tokens[1]
	p.mu.RLock()
	cmd, ok := p.commands[keyword]
	p.mu.RUnlock()
	if !ok {
		return nil, domain.NewDomainError(op, domain.ErrUnknownCommand, keyword)
	}

	values := tokens[2:]
	if len(values) < len(cmd.args) {
		return nil, domain.NewDomainError(op, domain.ErrMissingArguments, keyword)
	}

	parsed := &domain.ParsedCommand{
		Command: cmd.keyword,
		Handler: cmd.handler,
	}
	for i, spec := range cmd.args {
		binding := domain.ArgBinding{Name: spec.Name, Value: values[i]}
		if spec.Required {
			parsed.Required = append(parsed.Required, binding)
		} else {
			parsed.Optional = append(parsed.Optional, binding)
		}
	}
	return parsed, nil
}
