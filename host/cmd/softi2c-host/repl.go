package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

const replPrompt = "i2c> "

func newREPLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Run commands interactively on one connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Connect up front so a missing adapter fails before the prompt
			if _, err := a.connect(); err != nil {
				return err
			}
			return a.repl(cmd)
		},
	}
}

func (a *app) repl(cmd *cobra.Command) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for {
		fmt.Fprint(out, replPrompt)
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}

		line := strings.TrimSpace(in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit":
			return nil
		}

		sub := newRootCmd(a, false)
		sub.SetArgs(args)
		sub.SetIn(cmd.InOrStdin())
		sub.SetOut(out)
		sub.SetErr(out)
		if err := sub.Execute(); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}
