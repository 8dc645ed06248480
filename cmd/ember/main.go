// Command ember runs Ember scripts and provides a REPL.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ember-lang/ember/internal/builtin"
	_ "github.com/ember-lang/ember/internal/builtin/all"
	"github.com/ember-lang/ember/internal/compile"
	"github.com/ember-lang/ember/internal/config"
	"github.com/ember-lang/ember/internal/trace"
	"github.com/ember-lang/ember/internal/vm"
)

var (
	tracePath string
	exitCode  int

	errColor   = color.New(color.FgRed, color.Bold)
	frameColor = color.New(color.Faint)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if exitCode == 0 {
			exitCode = 64
		}
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ember [script]",
		Short:         "Ember is a small bytecode-VM scripting language",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, err := newMachine()
			if err != nil {
				exitCode = 74
				return err
			}
			if len(args) == 0 {
				runREPL(machine)
				return nil
			}
			runFile(machine, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&tracePath, "trace", "", "record an execution trace to the given file")
	return cmd
}

func newMachine() (*vm.VM, error) {
	cfg, err := config.LoadFromDir(".")
	if err != nil {
		return nil, err
	}
	machine := vm.New()
	machine.SetLimits(cfg.VM.MaxStackSlots, cfg.VM.MaxCallFrames)
	builtin.InstallAll(machine)
	return machine, nil
}

func runFile(machine *vm.VM, path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		exitCode = 74
		fmt.Fprintln(os.Stderr, err)
		return
	}

	if tracePath != "" {
		sess := trace.Start(machine, tracePath)
		defer sess.Close()
	}

	fn, err := compile.Compile(machine, string(src), path)
	if err != nil {
		exitCode = 65
		printDiagnostic(err)
		return
	}
	if _, err := machine.Interpret(fn); err != nil {
		exitCode = 70
		printDiagnostic(err)
	}
}

func runREPL(machine *vm.VM) {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fn, err := compile.Compile(machine, line, "<repl>")
		if err != nil {
			printDiagnostic(err)
			continue
		}
		if _, err := machine.Interpret(fn); err != nil {
			printDiagnostic(err)
		}
	}
}

func printDiagnostic(err error) {
	fmt.Fprintln(os.Stderr, errColor.Sprint(err.Error()))
	if re, ok := err.(*vm.RuntimeError); ok {
		if st := re.StackTrace(); st != "" {
			fmt.Fprint(os.Stderr, frameColor.Sprint(st))
		}
	}
}
