// Package print registers the "print" built-in: one value, with any
// trailing arguments substituted into the first when it is a string,
// mirroring the reference implementation's native print. A call with no
// arguments prints nothing and returns nil.
package print

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ember-lang/ember/internal/builtin"
	"github.com/ember-lang/ember/internal/vm"
)

var printer = message.NewPrinter(language.English)

func init() {
	builtin.Register(builtin.Spec{Name: "print", Arity: -1, Fn: run})
}

func run(machine *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) == 0 {
		return vm.Nil(), nil
	}

	if !args[0].IsString() {
		fmt.Fprintln(os.Stdout, vm.ToString(args[0]))
		return vm.Nil(), nil
	}

	format := args[0].AsString().String()
	if len(args) == 1 {
		fmt.Fprintln(os.Stdout, format)
		return vm.Nil(), nil
	}

	rest := make([]interface{}, len(args)-1)
	for i, a := range args[1:] {
		rest[i] = vm.ToString(a)
	}
	fmt.Fprintln(os.Stdout, printer.Sprintf(format, rest...))
	return vm.Nil(), nil
}
