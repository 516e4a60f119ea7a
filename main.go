package main

import cmd "github.com/logv/zdw/cmd"

import "fmt"
import "os"
import "log"
import "sort"

var cmdFuncs = make(map[string]func())
var cmdKeys = make([]string, 0)

func setupCommands() {
	cmdFuncs["convert"] = cmd.RunConvertCmdLine
	cmdFuncs["unconvert"] = cmd.RunUnconvertCmdLine
	cmdFuncs["inspect"] = cmd.RunInspectCmdLine
	cmdFuncs["version"] = cmd.RunVersionCmdLine

	for k := range cmdFuncs {
		cmdKeys = append(cmdKeys, k)
	}
}

// USAGE explains zdw's usage
var USAGE = `zdw: a column-oriented binary container format for tab-separated dumps

Commands: convert, unconvert, inspect, version

  convert: encode a tab-separated, schema-qualified dump into a .zdw file

    example: zdw convert -gzip mytable.sql
    example: zdw convert -o ./out -bzip2 -validate mytable.sql

  unconvert: decode a .zdw file back to tab-separated text

    example: zdw unconvert mytable.zdw.gz
    example: zdw unconvert -columns a,b,c -stdout mytable.zdw.gz

  inspect: dump a .zdw file's header and block headers

    example: zdw inspect -file mytable.zdw.gz

  version: print the CLI and wire format versions

`

func printCommandHelp() {
	sort.Strings(cmdKeys)

	fmt.Print(USAGE)
	log.Fatal()
}

func main() {
	setupCommands()

	if len(os.Args) < 2 {
		printCommandHelp()
	}

	firstArg := os.Args[1]
	os.Args = os.Args[1:]

	handler, ok := cmdFuncs[firstArg]
	if !ok {
		printCommandHelp()
	}

	handler()

}
