// Package zdwlog provides the debug/warn logging used across the zdw
// codec and CLI. It mirrors the teacher's flag-gated Debug/Warn helpers
// but drops the fatal-on-error variant: library code returns *zdw.Error
// instead of calling log.Fatalln, so only the CLI layer decides when to
// exit the process.
package zdwlog

import (
	"log"
	"os"
)

var debugEnabled = os.Getenv("ZDW_DEBUG") != ""

// SetDebug toggles debug logging at runtime, e.g. from the convert
// command's -quiet flag.
func SetDebug(on bool) {
	debugEnabled = on
}

func Debug(args ...interface{}) {
	if debugEnabled {
		log.Println(args...)
	}
}

func Warn(args ...interface{}) {
	log.Println(append([]interface{}{"WARNING:"}, args...)...)
}
