package judge

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// nonSerializablePlaceholder replaces console arguments that cannot survive
// serialization out of the sandbox.
const nonSerializablePlaceholder = "[Circular or Non-Serializable Object]"

// pathPlaceholder replaces anything path-shaped in stack traces so log output
// never leaks host filesystem structure.
const pathPlaceholder = "<sandbox>"

var hostPathRe = regexp.MustCompile(`(?:[A-Za-z]:)?(?:[\\/][\w.~-]+){2,}`)

// logSink accumulates console output on the host side of the boundary. Only
// stringified lines cross; the sandbox never holds a reference back into it
// beyond the one-way callback.
type logSink struct {
	mu    sync.Mutex
	items []string
}

func (l *logSink) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, line)
}

func (l *logSink) appendAll(lines []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, lines...)
}

func (l *logSink) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// bindConsole rebinds the sandbox global console so log/error/warn/info
// forward stringified arguments to the host-side sink. Error, warn and info
// prefix their lines so consumers can classify them without re-parsing.
func bindConsole(vm *goja.Runtime, sink *logSink) {
	console := vm.NewObject()
	bind := func(name, prefix string) {
		console.Set(name, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = formatConsoleArg(arg)
			}
			sink.append(prefix + strings.Join(parts, " "))
			return goja.Undefined()
		})
	}
	bind("log", "")
	bind("error", "[ERROR] ")
	bind("warn", "[WARN] ")
	bind("info", "[INFO] ")
	vm.Set("console", console)
}

func formatConsoleArg(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}

	switch exported := v.Export().(type) {
	case string:
		return exported
	case bool:
		return strconv.FormatBool(exported)
	case int64:
		return strconv.FormatInt(exported, 10)
	case float64:
		return canonicalFloat(exported)
	default:
		pretty, err := json.MarshalIndent(exported, "", "  ")
		if err != nil {
			return nonSerializablePlaceholder
		}
		return string(pretty)
	}
}

// sanitizeStack truncates a stack trace to a few lines and scrubs anything
// that looks like a host path.
func sanitizeStack(stack string) []string {
	lines := strings.Split(strings.TrimRight(stack, "\n"), "\n")
	if len(lines) > maxStackTraceLines {
		lines = lines[:maxStackTraceLines]
	}
	for i, line := range lines {
		lines[i] = scrubPaths(line)
	}
	return lines
}

func scrubPaths(s string) string {
	return hostPathRe.ReplaceAllString(s, pathPlaceholder)
}
