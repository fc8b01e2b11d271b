package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

type ErrorKind string

const (
	ErrKindTimeout  ErrorKind = "timeout"
	ErrKindMemory   ErrorKind = "memory_limit"
	ErrKindRuntime  ErrorKind = "runtime"
	ErrKindCanceled ErrorKind = "canceled"
)

// Interrupt sentinels. The watchdogs hand these to goja.Runtime.Interrupt so
// the resulting InterruptedError can be classified afterwards.
const (
	interruptTimeout  = "sandbox timeout"
	interruptMemory   = "sandbox memory limit"
	interruptCanceled = "sandbox canceled"
)

// resultGlobal is the well-known global the harness assigns the entry point's
// return value to.
const resultGlobal = "result"

const maxStackTraceLines = 3

// Sandbox runs one unit of untrusted JavaScript per Run call. Every call gets
// a fresh goja runtime with no host bindings beyond the captured console;
// runtimes are never pooled or reused, so nothing leaks between invocations.
type Sandbox struct {
	Timeout     time.Duration
	MemoryLimit int64 // bytes of host heap growth tolerated during one run
}

func NewSandbox(timeout time.Duration, memoryLimit int64) *Sandbox {
	return &Sandbox{Timeout: timeout, MemoryLimit: memoryLimit}
}

// RunResult crosses the isolation boundary by value only: the result is a
// plain Go value (maps, slices, primitives), never a live reference into the
// runtime.
type RunResult struct {
	Success  bool
	Value    any
	Kind     ErrorKind
	Error    string
	Logs     []string
	Duration time.Duration
}

// Run executes the candidate code plus the appended harness call inside a
// fresh runtime, bounded by the wall-clock and memory budgets. The script
// itself runs on its own goroutine so a hung candidate only ever stalls that
// goroutine until the interrupt lands, never the caller beyond the budget.
func (s *Sandbox) Run(ctx context.Context, code, entryPoint string, args []any) RunResult {
	logs := &logSink{}

	vm := goja.New()
	vm.SetMaxCallStackSize(2048)
	bindConsole(vm, logs)

	script, err := assembleScript(code, entryPoint, args)
	if err != nil {
		return RunResult{
			Kind:  ErrKindRuntime,
			Error: fmt.Sprintf("failed to marshal arguments into sandbox: %v", err),
			Logs:  logs.lines(),
		}
	}

	type scriptOutcome struct {
		value goja.Value
		err   error
	}
	resCh := make(chan scriptOutcome, 1)

	start := time.Now()
	go func() {
		v, err := vm.RunString(script)
		resCh <- scriptOutcome{value: v, err: err}
	}()

	timer := time.AfterFunc(s.Timeout, func() { vm.Interrupt(interruptTimeout) })
	defer timer.Stop()

	stopWatchdog := make(chan struct{})
	var watchdogDone sync.WaitGroup
	if s.MemoryLimit > 0 {
		watchdogDone.Add(1)
		go func() {
			defer watchdogDone.Done()
			s.watchMemory(vm, stopWatchdog)
		}()
	}

	var out scriptOutcome
	select {
	case out = <-resCh:
	case <-ctx.Done():
		vm.Interrupt(interruptCanceled)
		out = <-resCh
	}
	elapsed := time.Since(start)

	// Unconditional teardown: both watchdogs are disarmed and joined before
	// the runtime is released, on every exit path.
	timer.Stop()
	close(stopWatchdog)
	watchdogDone.Wait()
	vm.ClearInterrupt()

	if out.err != nil {
		kind, msg, stack := classifyError(out.err, s.Timeout)
		logs.appendAll(stack)
		return RunResult{
			Kind:     kind,
			Error:    msg,
			Logs:     logs.lines(),
			Duration: elapsed,
		}
	}

	value, err := extractResult(vm, out.value)
	if err != nil {
		return RunResult{
			Kind:     ErrKindRuntime,
			Error:    fmt.Sprintf("failed to extract result from sandbox: %v", err),
			Logs:     logs.lines(),
			Duration: elapsed,
		}
	}

	return RunResult{
		Success:  true,
		Value:    value,
		Logs:     logs.lines(),
		Duration: elapsed,
	}
}

// watchMemory samples host heap growth and interrupts the runtime when it
// exceeds the budget. This is a host-process heap delta, not the runtime's own
// accounting, so concurrent runs can bleed into each other's figures; it is a
// backstop against runaway allocation, not an exact meter.
func (s *Sandbox) watchMemory(vm *goja.Runtime, stop <-chan struct{}) {
	var base runtime.MemStats
	runtime.ReadMemStats(&base)

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			var now runtime.MemStats
			runtime.ReadMemStats(&now)
			if int64(now.HeapAlloc)-int64(base.HeapAlloc) > s.MemoryLimit {
				vm.Interrupt(interruptMemory)
				return
			}
		}
	}
}

// assembleScript builds the single unit of code executed inside the sandbox:
// an inside-executed JSON.parse of the host-serialized argument list, the
// candidate's source verbatim, then the harness call assigning into the
// well-known result global. Candidate and harness share the runtime's global
// scope; that is fine because the runtime is single use.
func assembleScript(code, entryPoint string, args []any) (string, error) {
	argJSON, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	if args == nil {
		argJSON = []byte("[]")
	}
	// Escape the serialized arguments as a JS string literal so exotic
	// content cannot break out of the parse call.
	quoted, err := json.Marshal(string(argJSON))
	if err != nil {
		return "", err
	}

	refs := make([]string, len(args))
	for i := range args {
		refs[i] = fmt.Sprintf("__args[%d]", i)
	}

	var b strings.Builder
	b.WriteString("var __args = JSON.parse(")
	b.Write(quoted)
	b.WriteString(");\n")
	b.WriteString(code)
	b.WriteString("\n")
	b.WriteString(resultGlobal)
	b.WriteString(" = ")
	b.WriteString(entryPoint)
	b.WriteString("(")
	b.WriteString(strings.Join(refs, ", "))
	b.WriteString(");\n")
	return b.String(), nil
}

// extractResult copies the produced value out of the runtime. The script's
// completion value is preferred; if it is undefined the result global is read
// instead. Direct export is attempted first, falling back to an
// inside-executed JSON.stringify plus a host-side parse when the exported
// value does not survive serialization.
func extractResult(vm *goja.Runtime, scriptValue goja.Value) (any, error) {
	v := scriptValue
	if v == nil || goja.IsUndefined(v) {
		v = vm.GlobalObject().Get(resultGlobal)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	exported := v.Export()
	if normalized, err := normalizeExported(exported); err == nil {
		return normalized, nil
	}

	// Re-serialize inside the boundary with the runtime's own JSON support.
	if err := vm.GlobalObject().Set("__extract", v); err != nil {
		return nil, err
	}
	sv, err := vm.RunString("JSON.stringify(__extract)")
	if err != nil {
		return nil, err
	}
	if sv == nil || goja.IsUndefined(sv) || goja.IsNull(sv) {
		return nil, nil
	}
	return decodeJSON(sv.String())
}

// normalizeExported funnels an exported value through a JSON round trip so
// results compare against fixture-decoded values on equal footing
// (json.Number everywhere). Values that cannot be serialized report an error.
func normalizeExported(exported any) (any, error) {
	if exported == nil {
		return nil, nil
	}
	raw, err := json.Marshal(exported)
	if err != nil {
		return nil, err
	}
	return decodeJSON(string(raw))
}

func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func classifyError(err error, timeout time.Duration) (ErrorKind, string, []string) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		switch interrupted.Value() {
		case interruptTimeout:
			return ErrKindTimeout, fmt.Sprintf("execution timed out after %dms", timeout.Milliseconds()), nil
		case interruptMemory:
			return ErrKindMemory, "execution exceeded the sandbox memory limit", nil
		case interruptCanceled:
			return ErrKindCanceled, "execution canceled", nil
		}
		return ErrKindRuntime, "execution interrupted", nil
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		return ErrKindRuntime, exc.Error(), sanitizeStack(exc.String())
	}

	// Compile/syntax errors and anything else goja surfaces.
	return ErrKindRuntime, scrubPaths(err.Error()), nil
}
