package internal

import (
	"github.com/halvard/ansuz/internal/naming"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	prompter naming.Prompter
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPrompter enables the interactive rename dialog. Surfaces without a
// terminal leave this unset and dialog mode falls back to template
// naming.
func WithPrompter(p naming.Prompter) Option {
	return func(a *application) {
		a.prompter = p
	}
}
