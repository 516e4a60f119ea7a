// Package cmd holds the CLI command drivers, mirroring the teacher's
// src/cmd layout: one RunXCmdLine entry point per subcommand, driven by
// package-level flag definitions parsed with the standard flag package.
package cmd

import (
	"log"
	"os"

	"github.com/logv/zdw/pkg/zdw"
)

// ToolVersion is the CLI's own version string, distinct from
// zdw.CurrentVersion (the wire format version it writes).
const ToolVersion = "1.0.0"

// exitOnErr converts a *zdw.Error into the fatal-exit-with-distinct-code
// idiom at the CLI boundary (spec §7): the codec core itself never calls
// log.Fatal, only this layer does, same as the teacher's Error() helper
// but mapped onto a taxonomy of exit codes instead of a single one.
func exitOnErr(err *zdw.Error) {
	if err == nil {
		return
	}
	log.Println(err)
	os.Exit(err.Kind.ExitCode())
}
