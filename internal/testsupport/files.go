package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// CutlistLine joins 19 source values into one semicolon-delimited line.
// Missing trailing values are left empty.
func CutlistLine(values ...string) string {
	fields := make([]string, 19)
	copy(fields, values)
	return strings.Join(fields, ";")
}

// MPR program fragments shared by package tests. Lines end in CRLF like the
// files written by the design tool.
const (
	MPRHeader = "[H\r\nVERSION=\"4.0 Alpha\"\r\nMAT=\"HOMAG\"\r\n\r\n"

	MPRWorkpiece = "<100 \\WerkStck\\\r\nLA=\"600\"\r\nBR=\"400\"\r\nDI=\"18\"\r\n\r\n"

	MPRComponent = "<139 \\Komponente\\\r\nIN=\"ZP500_FR.mpr\"\r\nXA=\"0\"\r\nYA=\"0\"\r\n\r\n"

	MPRAngleGroove = "<124 \\Winkelsaegen\\\r\nXA=\"0\"\r\nYA=\"200\"\r\nXE=\"600\"\r\nYE=\"200\"\r\n\r\n"

	MPRGrooveBelow = "<109 \\Nuten\\\r\nXA=\"0\"\r\nYA=\"200\"\r\nXE=\"600\"\r\nYE=\"200\"\r\nNB=\"8\"\r\nTI=\"9\"\r\nRK=\"WRKL\"\r\nT_=\"AAAA2\"\r\n\r\n"

	MPRGrooveTop = "<109 \\Nuten\\\r\nXA=\"0\"\r\nYA=\"100\"\r\nXE=\"600\"\r\nYE=\"100\"\r\nNB=\"4\"\r\nTI=\"8\"\r\nT_=\"SAW01\"\r\n\r\n"

	MPRTrailer = "!\r\n"
)

// MPRProgram concatenates the header, the given blocks and the trailer.
func MPRProgram(blocks ...string) string {
	return MPRHeader + strings.Join(blocks, "") + MPRTrailer
}
