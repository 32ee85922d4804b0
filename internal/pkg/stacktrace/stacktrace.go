// Package stacktrace trims runtime stack dumps down to frames of this module.
package stacktrace

import "strings"

// InternalFrames returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a debug.Stack dump, innermost first, without repeats. Frames of this
// package are skipped.
func InternalFrames(stack []byte) []string {
	var frames []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(string(stack), "\n") {
		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		_, rel, ok := strings.Cut(loc, "/internal/")
		if !ok {
			continue
		}

		frame := "internal/" + rel
		if strings.HasPrefix(frame, "internal/pkg/stacktrace/") {
			continue
		}
		if _, dup := seen[frame]; dup {
			continue
		}
		seen[frame] = struct{}{}
		frames = append(frames, frame)
	}

	return frames
}
