package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"context-assistant/internal/apperr"
	"context-assistant/internal/platform"
)

const readOp = "read input"

// Request describes where the CLI should take its text from. Sources are
// tried in a fixed order: File, Clipboard, Args, then the fallbacks
// described on Read.
type Request struct {
	File      string
	Clipboard bool
	Args      []string

	Stdin io.Reader
	// Interactive reports whether Stdin is a terminal rather than a pipe.
	Interactive bool
	// Prompt receives the interactive prompt; typically stderr.
	Prompt io.Writer
}

// Read returns the text to process. Without an explicit source it reads
// piped stdin, then the clipboard if it holds text, then prompts on the
// terminal until EOF. Emptiness is not checked here.
func Read(req Request, cb platform.Clipboard) (string, error) {
	switch {
	case req.File != "":
		return ReadFile(req.File)
	case req.Clipboard:
		return readClipboard(cb)
	case len(req.Args) > 0:
		return strings.Join(req.Args, " "), nil
	}

	if req.Stdin == nil {
		req.Stdin = os.Stdin
	}
	if !req.Interactive {
		return readAll(req.Stdin, "stdin")
	}
	if cb != nil {
		if text, err := cb.ReadText(); err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	if req.Prompt != nil {
		fmt.Fprintln(req.Prompt, "Enter text (Ctrl+D to finish):")
	}
	return readAll(req.Stdin, "stdin")
}

// ReadFile loads a text file, or extracts the text layer of a PDF.
func ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperr.Newf(apperr.KindInput, readOp, "file not found: %s", path)
		}
		return "", apperr.New(apperr.KindInput, readOp, err)
	}
	if info.IsDir() {
		return "", apperr.Newf(apperr.KindInput, readOp, "%s is a directory", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.New(apperr.KindInput, readOp, err)
	}
	return string(b), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", apperr.New(apperr.KindInput, readOp, fmt.Errorf("open pdf %s: %w", path, err))
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", apperr.New(apperr.KindInput, readOp, fmt.Errorf("extract pdf text: %w", err))
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", apperr.New(apperr.KindInput, readOp, fmt.Errorf("extract pdf text: %w", err))
	}
	return buf.String(), nil
}

func readClipboard(cb platform.Clipboard) (string, error) {
	if cb == nil {
		return "", apperr.New(apperr.KindInput, readOp, platform.ErrClipboardUnsupported)
	}
	text, err := cb.ReadText()
	if err != nil {
		return "", apperr.New(apperr.KindInput, readOp, fmt.Errorf("clipboard: %w", err))
	}
	return text, nil
}

func readAll(r io.Reader, name string) (string, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, bufio.NewReader(r)); err != nil {
		return "", apperr.New(apperr.KindInput, readOp, fmt.Errorf("%s: %w", name, err))
	}
	return sb.String(), nil
}
