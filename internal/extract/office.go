// ABOUTME: Word and OpenDocument extraction by reading XML parts out of the zip container
// ABOUTME: Pulls text nodes with regexes instead of a full XML parse
package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DOCX runs carry attributes (<w:t xml:space="preserve">), so the
// match cannot assume a bare tag
var (
	docxTextNode = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	docxBreak    = regexp.MustCompile(`</w:p>`)
	odtTextNode  = regexp.MustCompile(`<text:(?:p|h)[^>]*>(.*?)</text:(?:p|h)>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
)

// extractZipXML handles the zip-container office formats. DOCX keeps
// its body in word/document.xml, ODT in content.xml.
func extractZipXML(content []byte, ext string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract %s: not a zip container: %w", ext, err)
	}

	part := "word/document.xml"
	if ext == ".odt" {
		part = "content.xml"
	}

	xmlBody, err := readZipPart(zr, part)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", ext, err)
	}

	if ext == ".odt" {
		return odtText(xmlBody), nil
	}
	return docxText(xmlBody), nil
}

func readZipPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// docxText joins all text runs, inserting newlines at paragraph ends
// so chunking sees paragraph structure
func docxText(xmlBody []byte) string {
	body := docxBreak.ReplaceAllString(string(xmlBody), "</w:p>\n")
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		runs := docxTextNode.FindAllStringSubmatch(line, -1)
		if len(runs) == 0 {
			continue
		}
		for _, r := range runs {
			b.WriteString(r[1])
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// odtText pulls paragraph and heading elements, stripping nested spans
func odtText(xmlBody []byte) string {
	var b strings.Builder
	for _, m := range odtTextNode.FindAllStringSubmatch(string(xmlBody), -1) {
		text := strings.TrimSpace(anyTag.ReplaceAllString(m[1], " "))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}
	return b.String()
}
