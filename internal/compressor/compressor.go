// Package compressor implements C10: the outer codec that wraps a
// framed zdw byte stream. It sits strictly outside the wire format —
// nothing here inspects blocks or rows, grounded on the extension-based
// dispatch in the teacher's GetFileDecoder (logv-sybil's
// src/lib/table_decoder.go), generalized from gzip-only to the full set
// of compressors the original C++ encoder supports via popen.
package compressor

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Kind identifies one outer compressor.
type Kind string

const (
	None  Kind = "none"
	Gzip  Kind = "gzip"
	Bzip2 Kind = "bzip2"
	Xz    Kind = "xz"
	Zstd  Kind = "zstd"
)

// Extension returns the file suffix this compressor adds after ".zdw",
// e.g. ".gz" for Gzip (spec §6.1's "<basefilename>.zdw.[xz|gz|bz2|etc]").
func (k Kind) Extension() string {
	switch k {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case Xz:
		return ".xz"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// FromExtension maps a ".zdw"-suffixed filename's trailing extension
// back to a Kind, defaulting to None.
func FromExtension(filename string) Kind {
	switch {
	case strings.HasSuffix(filename, ".gz"):
		return Gzip
	case strings.HasSuffix(filename, ".bz2"):
		return Bzip2
	case strings.HasSuffix(filename, ".xz"):
		return Xz
	case strings.HasSuffix(filename, ".zst"):
		return Zstd
	default:
		return None
	}
}

// FromMagic sniffs a Kind from a stream's leading bytes, for stdin input
// where no filename extension is available.
func FromMagic(peek []byte) Kind {
	switch {
	case len(peek) >= 2 && peek[0] == 0x1f && peek[1] == 0x8b:
		return Gzip
	case len(peek) >= 3 && string(peek[:3]) == "BZh":
		return Bzip2
	case len(peek) >= 6 && bytes.Equal(peek[:6], []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
		return Xz
	case len(peek) >= 4 && bytes.Equal(peek[:4], []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return Zstd
	default:
		return None
	}
}

// subprocessWriter pipes written bytes through an external command's
// stdin and copies its stdout to dst, mirroring
// original_source/cplusplus/ConvertToZDW.cpp's popen(cmd, "w") pattern
// for compressors the pack ships no Go library for.
type subprocessWriter struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func newSubprocessWriter(dst io.Writer, name string, args ...string) (*subprocessWriter, error) {
	cmd := exec.Command(name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = dst

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}

	return &subprocessWriter{cmd: cmd, stdin: stdin}, nil
}

func (sw *subprocessWriter) Write(p []byte) (int, error) { return sw.stdin.Write(p) }

func (sw *subprocessWriter) Close() error {
	if err := sw.stdin.Close(); err != nil {
		return err
	}
	return sw.cmd.Wait()
}

// subprocessReader pipes src through an external command's stdin and
// exposes its stdout, used for xz decode (no pack-provided Go reader).
type subprocessReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

func newSubprocessReader(src io.Reader, name string, args ...string) (*subprocessReader, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = src
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}
	return &subprocessReader{cmd: cmd, stdout: stdout}, nil
}

func (sr *subprocessReader) Read(p []byte) (int, error) { return sr.stdout.Read(p) }

func (sr *subprocessReader) Close() error {
	sr.stdout.Close()
	return sr.cmd.Wait()
}

// NewWriter wraps dst with kind's compressor. compressorArgs is
// forwarded only to subprocess-backed compressors (bzip2, xz), mirroring
// the teacher CLI's pass-through argument string for external tools.
func NewWriter(dst io.Writer, kind Kind, compressorArgs []string) (io.WriteCloser, error) {
	switch kind {
	case None:
		return nopWriteCloser{dst}, nil
	case Gzip:
		return gzip.NewWriter(dst), nil
	case Zstd:
		return zstd.NewWriter(dst)
	case Bzip2:
		return newSubprocessWriter(dst, "bzip2", compressorArgs...)
	case Xz:
		return newSubprocessWriter(dst, "xz", compressorArgs...)
	default:
		return nil, fmt.Errorf("unknown compressor %q", kind)
	}
}

// NewReader wraps src with kind's decompressor.
func NewReader(src io.Reader, kind Kind) (io.ReadCloser, error) {
	switch kind {
	case None:
		return nopReadCloser{bufio.NewReader(src)}, nil
	case Gzip:
		r, err := gzip.NewReader(src)
		if err != nil {
			return nil, err
		}
		return r, nil
	case Zstd:
		r, err := zstd.NewReader(src)
		if err != nil {
			return nil, err
		}
		return r.IOReadCloser(), nil
	case Bzip2:
		return nopReadCloser{bzip2.NewReader(src)}, nil
	case Xz:
		return newSubprocessReader(src, "xz", "-d")
	default:
		return nil, fmt.Errorf("unknown compressor %q", kind)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }
