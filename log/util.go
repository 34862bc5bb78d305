package log

import (
	"runtime"
	"strconv"
)

// LazyEval defers building a log argument until the level check passes.
type LazyEval func() string

func (l LazyEval) String() string {
	return l()
}

// DoLazyEval returns LazyEval. Use with a "%v" format string to skip
// evaluation entirely when the statement is filtered.
func DoLazyEval(c func() string) LazyEval {
	return LazyEval(c)
}

// SkipCaller returns the caller's location (file and line) to help debug.
// skip counts stack frames above this function.
func SkipCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	return file + ":" + strconv.Itoa(line)
}
