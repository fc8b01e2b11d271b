package judge

import (
	"testing"
)

func TestResolveEntryPoint(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		starter   string
		want      string
	}{
		{
			name:      "var assignment",
			candidate: "var twoSum = function(a, b) { return [0, 1]; };",
			want:      "twoSum",
		},
		{
			name:      "named function declaration",
			candidate: "function addNums(a, b) { return a + b; }",
			want:      "addNums",
		},
		{
			name:      "const assignment",
			candidate: "const reverse = (s) => s.split('').reverse().join('');",
			want:      "reverse",
		},
		{
			name:      "let assignment",
			candidate: "let merge = (a, b) => a.concat(b);",
			want:      "merge",
		},
		{
			name:      "var wins over function",
			candidate: "function helper(x) { return x; }\nvar main = function() { return helper(1); };",
			want:      "main",
		},
		{
			name:      "falls back to starter code",
			candidate: "// work in progress",
			starter:   "function fallbackFn() {}",
			want:      "fallbackFn",
		},
		{
			name:      "starter const is ignored",
			candidate: "",
			starter:   "const notThis = 1;",
			want:      DefaultEntryPoint,
		},
		{
			name:      "default when nothing matches",
			candidate: "1 + 1;",
			want:      DefaultEntryPoint,
		},
		{
			name:      "tolerates incomplete source",
			candidate: "var partial = function(a) { if (a >",
			want:      "partial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEntryPoint(tt.candidate, tt.starter); got != tt.want {
				t.Errorf("ResolveEntryPoint() = %q, want %q", got, tt.want)
			}
		})
	}
}
