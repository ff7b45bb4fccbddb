package testutil

import (
	"context"

	"fieldmark/internal/field"
)

// StubPrompter answers the identity prompt with a canned response and
// counts how often it was asked.
type StubPrompter struct {
	Name     string
	OK       bool
	Prompted int
}

func (p *StubPrompter) PromptName(context.Context) (string, bool, error) {
	p.Prompted++
	return p.Name, p.OK, nil
}

// StubConfirmer answers the clear-all confirmation and records the count it
// was shown.
type StubConfirmer struct {
	Answer    bool
	Asked     int
	LastCount int
}

func (c *StubConfirmer) ConfirmClear(_ context.Context, count int) (bool, error) {
	c.Asked++
	c.LastCount = count
	return c.Answer, nil
}

// StubLocation returns a fixed fix or a fixed error.
type StubLocation struct {
	Fix field.Fix
	Err error
}

func (s *StubLocation) Latest(context.Context) (field.Fix, error) {
	if s.Err != nil {
		return field.Fix{}, s.Err
	}
	return s.Fix, nil
}
