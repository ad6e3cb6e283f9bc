package model

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command is a fully built program invocation. It is handed to a
// CommandRunner as an argv list, never through a shell.
type Command struct {
	Program string   `yaml:"program" json:"program"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	Dir     string   `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// NewCommand builds a Command from a program and its arguments.
func NewCommand(program string, args ...string) Command {
	return Command{Program: program, Args: args}
}

// ParseCommand splits a shell-style command line into a Command.
func ParseCommand(line string) (Command, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("parse command %q: %w", line, err)
	}
	if len(words) == 0 {
		return Command{}, fmt.Errorf("no command specified")
	}
	return NewCommand(words[0], words[1:]...), nil
}

// InDir returns a copy of c that runs in dir.
func (c Command) InDir(dir string) Command {
	c.Dir = dir
	return c
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Program)
	return append(argv, c.Args...)
}

// String renders the command as a single shell-quoted line. Splitting the
// result with ParseCommand yields the same argv.
func (c Command) String() string {
	return shellquote.Join(c.Argv()...)
}

// IsEmpty reports whether the command has no program to run.
func (c Command) IsEmpty() bool {
	return strings.TrimSpace(c.Program) == ""
}
