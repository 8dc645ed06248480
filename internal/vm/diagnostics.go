package vm

import (
	"fmt"
	"strings"
)

// TraceInfo describes a single instruction dispatch, for an optional
// tracing hook used by tooling rather than by the interpreter itself.
type TraceInfo struct {
	Op       OpCode
	Function string
	Line     int
	IP       int
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// FrameInfo captures one call frame at the time of an error or trace
// event, enough to render a stack trace line.
type FrameInfo struct {
	Function string
	Line     int
	IP       int
}

// RuntimeError carries source/stack information for VM failures,
// surfaced to callers as a normal Go error.
type RuntimeError struct {
	Message string
	Frame   FrameInfo
	Stack   []FrameInfo
	Cause   error
}

func (e *RuntimeError) Error() string {
	loc := ""
	if e.Frame.Line > 0 {
		loc = fmt.Sprintf("line %d", e.Frame.Line)
	}
	if e.Frame.Function != "" {
		if loc != "" {
			loc += " "
		}
		loc += "in " + e.Frame.Function
	}
	if loc != "" {
		return fmt.Sprintf("%s: %s", loc, e.Message)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// StackTrace renders every frame, innermost first, the way a failing
// script's diagnostic output lists its call chain.
func (e *RuntimeError) StackTrace() string {
	var sb strings.Builder
	for _, f := range e.Stack {
		fmt.Fprintf(&sb, "  at %s (line %d)\n", f.Function, f.Line)
	}
	return sb.String()
}

func (vm *VM) runtimeErrorf(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	return vm.newRuntimeError(msg, nil)
}

func (vm *VM) wrapRuntimeError(err error) *RuntimeError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RuntimeError); ok {
		return re
	}
	return vm.newRuntimeError(err.Error(), err)
}

func (vm *VM) newRuntimeError(msg string, cause error) *RuntimeError {
	var frame FrameInfo
	if len(vm.frames) > 0 {
		frame = vm.frameInfo(&vm.frames[len(vm.frames)-1])
	}
	return &RuntimeError{
		Message: msg,
		Frame:   frame,
		Stack:   vm.stackTrace(),
		Cause:   cause,
	}
}

func (vm *VM) stackTrace() []FrameInfo {
	trace := make([]FrameInfo, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		trace = append(trace, vm.frameInfo(&vm.frames[i]))
	}
	return trace
}

func (vm *VM) frameInfo(fr *callFrame) FrameInfo {
	if fr == nil || fr.closure == nil {
		return FrameInfo{}
	}
	fn := fr.closure.fn
	offset := fr.ip - 1
	if offset < 0 {
		offset = 0
	}
	return FrameInfo{
		Function: fn.displayName(),
		Line:     fn.Chunk.LineAt(offset),
		IP:       offset,
	}
}

func (vm *VM) trace(op OpCode) {
	if vm.traceHook == nil || len(vm.frames) == 0 {
		return
	}
	info := vm.frameInfo(&vm.frames[len(vm.frames)-1])
	vm.traceHook(TraceInfo{Op: op, Function: info.Function, Line: info.Line, IP: info.IP})
}
