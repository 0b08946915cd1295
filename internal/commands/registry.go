package commands

import command "github.com/goliatone/go-command"

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used to schedule recurring command executions.
type CronRegistrar func(command.HandlerConfig, func() error) error
