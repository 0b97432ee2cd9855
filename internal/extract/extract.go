// ABOUTME: Extracts plain text from PDF, Word and plain-text documents for ingestion
// ABOUTME: Unknown formats are treated as UTF-8 text so ingestion never hard-fails on extension
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extractor converts document files into plain text
type Extractor struct{}

// NewExtractor returns an extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFile reads the file and extracts its text based on extension
func (e *Extractor) ExtractFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.Extract(content, strings.ToLower(filepath.Ext(path)))
}

// Extract converts raw bytes to text. ext includes the leading dot.
// Extensions without a dedicated extractor fall through to plain text
// so a mislabeled file still yields something indexable.
func (e *Extractor) Extract(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx", ".odt":
		return extractZipXML(content, ext)
	default:
		return extractPlain(content)
	}
}

// extractPlain returns the bytes as a string, replacing invalid UTF-8
// sequences so downstream chunking always sees valid text
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
