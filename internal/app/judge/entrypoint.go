package judge

import (
	"regexp"
)

// DefaultEntryPoint is invoked when no declaration can be located in either
// the candidate source or the starter code.
const DefaultEntryPoint = "solution"

var (
	varDeclRe      = regexp.MustCompile(`(?m)\bvar\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`)
	functionDeclRe = regexp.MustCompile(`(?m)\bfunction\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`)
	constDeclRe    = regexp.MustCompile(`(?m)\bconst\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`)
	letDeclRe      = regexp.MustCompile(`(?m)\blet\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`)
)

// ResolveEntryPoint guesses the callable symbol the harness should invoke.
// It is a pattern matcher, not a parser: the source only has to contain a
// recognizable declaration, not parse as a complete program. Declaration
// idioms are tried in priority order against the candidate source, then
// var/function only against the starter code (starter templates conventionally
// use those two forms). A wrong guess is harmless here; the invocation inside
// the sandbox reports "is not a function" as an ordinary execution error.
func ResolveEntryPoint(candidate, starter string) string {
	for _, re := range []*regexp.Regexp{varDeclRe, functionDeclRe, constDeclRe, letDeclRe} {
		if m := re.FindStringSubmatch(candidate); m != nil {
			return m[1]
		}
	}
	for _, re := range []*regexp.Regexp{varDeclRe, functionDeclRe} {
		if m := re.FindStringSubmatch(starter); m != nil {
			return m[1]
		}
	}
	return DefaultEntryPoint
}
