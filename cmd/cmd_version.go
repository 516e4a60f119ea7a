package cmd

import (
	"flag"
	"fmt"

	"github.com/logv/zdw/pkg/zdw"
)

// RunVersionCmdLine prints the CLI version and the wire format version
// it writes, grounded on the teacher's RunVersionCmdLine
// (src/cmd/cmd_version.go) / GetVersionInfo (src/lib/version.go).
func RunVersionCmdLine() {
	flag.Parse()
	fmt.Printf("zdw %s (wire format version %d, supports %d-%d)\n",
		ToolVersion, zdw.CurrentVersion, zdw.MinSupportedVersion, zdw.MaxSupportedVersion)
}
