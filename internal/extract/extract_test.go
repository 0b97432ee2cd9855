// ABOUTME: Tests for document text extraction across supported formats
// ABOUTME: Office formats are exercised with zips constructed in memory
package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func makeZip(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_PlainText(t *testing.T) {
	e := NewExtractor()
	got, err := e.Extract([]byte("hello world"), ".txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_InvalidUTF8Replaced(t *testing.T) {
	e := NewExtractor()
	got, err := e.Extract([]byte{0x68, 0x69, 0xff, 0xfe}, ".txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.HasPrefix(got, "hi") {
		t.Errorf("valid prefix lost: %q", got)
	}
	if strings.ContainsRune(got, 0xff) {
		t.Error("invalid bytes should be replaced")
	}
}

func TestExtract_UnknownExtensionFallsBackToPlain(t *testing.T) {
	e := NewExtractor()
	got, err := e.Extract([]byte("raw data"), ".xyz")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "raw data" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_DOCX(t *testing.T) {
	doc := `<w:document><w:body>` +
		`<w:p w:rsidR="0"><w:r><w:t>First paragraph.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := makeZip(t, "word/document.xml", doc)

	got, err := NewExtractor().Extract(data, ".docx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "First paragraph.") {
		t.Errorf("missing first paragraph: %q", got)
	}
	if !strings.Contains(got, "Second paragraph.") {
		t.Errorf("runs should join within a paragraph: %q", got)
	}
	if !strings.Contains(got, "\n") {
		t.Error("paragraphs should be newline separated")
	}
}

func TestExtract_ODT(t *testing.T) {
	doc := `<office:document-content><office:body>` +
		`<text:h text:style-name="H1">Title</text:h>` +
		`<text:p>Body with <text:span>nested</text:span> span.</text:p>` +
		`</office:body></office:document-content>`
	data := makeZip(t, "content.xml", doc)

	got, err := NewExtractor().Extract(data, ".odt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "Title") || !strings.Contains(got, "nested") {
		t.Errorf("missing content: %q", got)
	}
}

func TestExtract_DOCXNotAZip(t *testing.T) {
	if _, err := NewExtractor().Extract([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
}

func TestExtract_PDFGarbage(t *testing.T) {
	if _, err := NewExtractor().Extract([]byte("not a pdf"), ".pdf"); err == nil {
		t.Error("expected error for invalid pdf")
	}
}
