package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	pdfCharLimit  = 5000
	pdfPageLimit  = 10
	textCharLimit = 10000
	wordCharLimit = 5000
	wordParaLimit = 100
)

var errFileTooLarge = errors.New("file exceeds size limit")

// FileReaderImpl dispatches document bytes to the extractor matching their
// MIME type or file extension.
type FileReaderImpl struct {
	log *slog.Logger
}

// NewFileReader creates the default document extractor.
func NewFileReader(log *slog.Logger) *FileReaderImpl {
	return &FileReaderImpl{log: log.With("component", "extract.file")}
}

// Extract produces text for a document. Oversized and unrecognized files
// yield descriptive placeholders rather than errors.
func (r *FileReaderImpl) Extract(data []byte, mimeType, fileName string) Result {
	if len(data) > maxFileSize {
		return degraded("File too large to process: "+fileName, errFileTooLarge)
	}

	lower := strings.ToLower(fileName)
	switch {
	case mimeType == "application/pdf" || strings.HasSuffix(lower, ".pdf"):
		return r.extractPDF(data)
	case strings.HasPrefix(mimeType, "text/") || hasAnySuffix(lower, ".txt", ".md", ".csv"):
		return r.extractText(data)
	case mimeType == "application/msword" ||
		mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
		hasAnySuffix(lower, ".doc", ".docx"):
		return r.extractWord(data)
	default:
		return ok(fmt.Sprintf("[File: %s - %s - %d bytes]", fileName, mimeType, len(data)))
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func (r *FileReaderImpl) extractPDF(data []byte) (res Result) {
	failure := func(err error) Result {
		return degraded(fmt.Sprintf("PDF file: %d bytes (text extraction failed)", len(data)), err)
	}

	// The pdf package panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			res = failure(fmt.Errorf("pdf reader panic: %v", p))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return failure(err)
	}

	pages := reader.NumPage()
	if pages > pdfPageLimit {
		pages = pdfPageLimit
	}

	var sections []string
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			r.log.Warn("Skipping unreadable PDF page", "page", i, "error", err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			sections = append(sections, fmt.Sprintf("[Page %d]\n%s", i, text))
		}
	}

	if len(sections) == 0 {
		return ok("No text extracted from PDF")
	}
	return ok(truncateRunes(strings.Join(sections, "\n\n"), pdfCharLimit, "... [Truncated]"))
}

func (r *FileReaderImpl) extractText(data []byte) Result {
	text, err := decodeText(data)
	if err != nil {
		return degraded(fmt.Sprintf("Text file: %d bytes (decoding failed)", len(data)), err)
	}
	return ok(truncateRunes(strings.TrimSpace(text), textCharLimit, "... [Truncated]"))
}

// decodeText handles UTF-8 (with or without BOM), UTF-16 via BOM, and
// falls back to Windows-1252 for other byte sequences.
func decodeText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", fmt.Errorf("failed to decode UTF-16 text: %w", err)
		}
		return string(decoded), nil
	case utf8.Valid(data):
		return string(data), nil
	default:
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return "", fmt.Errorf("failed to decode legacy text: %w", err)
		}
		return string(decoded), nil
	}
}

// wordDocument mirrors the subset of the DOCX main document part needed
// to pull paragraph text.
type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text string `xml:"t"`
}

func (r *FileReaderImpl) extractWord(data []byte) Result {
	failure := func(err error) Result {
		return degraded(fmt.Sprintf("Word document: %d bytes (text extraction failed)", len(data)), err)
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return failure(err)
	}

	var docXML []byte
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			rc, err := file.Open()
			if err != nil {
				return failure(err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return failure(err)
			}
			break
		}
	}
	if docXML == nil {
		return failure(errors.New("word/document.xml not found in archive"))
	}

	var doc wordDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return failure(err)
	}

	paragraphs := doc.Body.Paragraphs
	if len(paragraphs) > wordParaLimit {
		paragraphs = paragraphs[:wordParaLimit]
	}

	var sections []string
	for _, para := range paragraphs {
		var sb strings.Builder
		for _, run := range para.Runs {
			sb.WriteString(run.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			sections = append(sections, text)
		}
	}

	if len(sections) == 0 {
		return ok("No text extracted from Word document")
	}
	return ok(truncateRunes(strings.Join(sections, "\n\n"), wordCharLimit, "... [Truncated]"))
}
