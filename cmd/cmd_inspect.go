package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/logv/zdw/internal/compressor"
	"github.com/logv/zdw/internal/zdwlog"
	"github.com/logv/zdw/pkg/zdw"
)

// RunInspectCmdLine dumps a file's header and block headers in
// human-readable form, grounded on the teacher's RunInspectCmdLine
// (src/cmd/cmd_inspect.go), which gob-decodes and prints a column/info
// blob; here the analogue parses the zdw binary header/block sequence
// instead of gob.
func RunInspectCmdLine() {
	path := flag.String("file", "", "zdw file to inspect")
	flag.Parse()

	if *path == "" {
		zdwlog.Warn("Please specify a file to inspect with the -file flag")
		os.Exit(zdw.MissingArgument.ExitCode())
	}

	f, err := os.Open(*path)
	if err != nil {
		exitOnErr(zdw.WrapFileOpenErr(*path, err))
	}
	defer f.Close()

	kind := compressor.FromExtension(*path)
	cr, err := compressor.NewReader(f, kind)
	if err != nil {
		exitOnErr(zdw.WrapFileOpenErr(*path, err))
	}
	defer cr.Close()

	header, zerr := zdw.ReadFileHeader(cr)
	exitOnErr(zerr)

	fmt.Printf("version: %d\n", header.Version)
	fmt.Printf("columns: %d\n", header.Schema.NumColumns())
	for i, c := range header.Schema.Columns {
		fmt.Printf("  [%d] %s %s char_size=%d\n", i, c.Name, c.Type, c.CharSize)
	}
	if header.Metadata.Len() > 0 {
		fmt.Println("metadata:")
		for _, k := range header.Metadata.Keys() {
			v, _ := header.Metadata.Get(k)
			fmt.Printf("  %s=%s\n", k, v)
		}
	}

	blockNum := 0
	for {
		blk, zerr := zdw.ReadBlock(cr, header.Schema, header.Version)
		exitOnErr(zerr)
		blockNum++

		fmt.Printf("block %d: num_rows=%d line_length=%d dict_size=%d last_block=%v\n",
			blockNum, blk.NumRows, blk.LineLength, blk.DictSize, blk.LastBlock)

		if blk.LastBlock {
			break
		}
	}
}
