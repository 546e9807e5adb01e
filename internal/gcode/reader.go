package gcode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/piwi3910/PathOrder/internal/model"
)

// maxLineLength bounds a single program line; generated programs can carry
// very long comment headers.
const maxLineLength = 1 << 20

// ReadProgram splits r into lines and returns a document whose root holds
// one raw node per line. A trailing carriage return is stripped from each
// line; a final newline is optional.
func ReadProgram(r io.Reader) (*model.Document, error) {
	doc := model.NewDocument()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		doc.AppendRaw(doc.Root(), line)
	}
	if err := scanner.Err(); err != nil {
		return doc, fmt.Errorf("failed to read program: %w", err)
	}
	return doc, nil
}

// ReadFile reads a program from path. When the file cannot be read it
// returns an empty document along with the error, so callers can still
// run the pipeline and produce an empty output.
func ReadFile(path string) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.NewDocument(), fmt.Errorf("failed to open program: %w", err)
	}
	defer f.Close()

	doc, err := ReadProgram(f)
	if err != nil {
		return model.NewDocument(), err
	}
	return doc, nil
}
