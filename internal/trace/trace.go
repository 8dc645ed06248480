// Package trace records per-instruction execution events to a .trace
// file for offline inspection. It hooks the VM's own TraceHook and is
// pure tooling: nothing here is consulted by the interpreter, so it
// cannot change observable program behavior.
package trace

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ember-lang/ember/internal/vm"
)

// Event is one recorded instruction dispatch, the on-disk counterpart
// of vm.TraceInfo.
type Event struct {
	Op       string
	Function string
	Line     int
	IP       int
}

// Session accumulates Events for one VM run and flushes them with
// msgpack on Close.
type Session struct {
	path   string
	events []Event
}

// Start returns a Session writing to path and wires its hook into
// machine. Call Close to flush once the run finishes.
func Start(machine *vm.VM, path string) *Session {
	s := &Session{path: path}
	machine.SetTraceHook(s.record)
	return s
}

func (s *Session) record(info vm.TraceInfo) {
	s.events = append(s.events, Event{
		Op:       info.Op.String(),
		Function: info.Function,
		Line:     info.Line,
		IP:       info.IP,
	})
}

// Close serializes the recorded events to the session's path.
func (s *Session) Close() error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := msgpack.NewEncoder(f)
	return enc.Encode(s.events)
}
