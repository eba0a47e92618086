package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"resume-converter/internal/shared/storage/object"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// minExtractedTextLen is the threshold below which a direct extraction is
	// considered insufficient (the usual symptom of a scanned, image-only
	// PDF) and the vision fallback kicks in.
	minExtractedTextLen = 100
)

var (
	// ErrUnsupportedFormat means the source is neither PDF nor Word.
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	// ErrInsufficientText means direct extraction came back (near) empty and
	// no vision fallback was available.
	ErrInsufficientText = errors.New("insufficient text extracted")
)

// VisionTranscriber transcribes visible text from a document image, used as
// the fallback for resumes without a text layer.
type VisionTranscriber interface {
	TranscribeDocument(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Extractor turns a resume source into plain text. Vision is optional; when
// nil, insufficient direct extraction is fatal.
type Extractor struct {
	Vision VisionTranscriber
}

// Extract pulls text from an in-memory payload, falling back to vision
// transcription at most once when the text layer is missing or too thin.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := extractDirect(data, mimeType, fileName)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(text)) >= minExtractedTextLen {
		return text, nil
	}

	if e.Vision == nil {
		return "", fmt.Errorf("%w: got %d characters", ErrInsufficientText, len(strings.TrimSpace(text)))
	}
	transcribed, err := e.Vision.TranscribeDocument(ctx, data, normalizeMimeType(mimeType, fileName, data))
	if err != nil {
		return "", fmt.Errorf("vision fallback: %w", err)
	}
	return transcribed, nil
}

// ExtractStored opens a stored object, extracts its text and persists a
// derived .extracted.txt copy next to the source.
func (e *Extractor) ExtractStored(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	text, err := e.Extract(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	extractedKey := fileKey + ".extracted.txt"
	if err := saveExtracted(ctx, store, extractedKey, text); err != nil {
		return "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	return text, nil
}

func extractDirect(data []byte, mimeType string, fileName string) (string, error) {
	normalized := normalizeMimeType(mimeType, fileName, data)
	switch normalized {
	case mimePDF:
		return extractPDF(data)
	case mimeDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, normalized)
	}
}

type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

func saveExtracted(ctx context.Context, store object.ObjectStore, key string, text string) error {
	saver, ok := store.(keySaver)
	if !ok {
		return errors.New("object store does not support SaveWithKey")
	}
	reader := strings.NewReader(text)
	_, err := saver.SaveWithKey(ctx, key, "text/plain; charset=utf-8", reader)
	return err
}

// extractPDF concatenates the text of every page: words joined by single
// spaces within a page, pages joined by newlines.
func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := pageText(page)
		if err != nil {
			return "", err
		}
		if content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func pageText(page pdf.Page) (text string, err error) {
	// The pdf package panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf page parse: %v", rec)
		}
	}()

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(content), " "), nil
}

// extractDOCX pulls the raw text of every run, discarding styling.
func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean == "application/msword" {
		return mimeDOCX
	}
	if clean != "application/zip" && clean != "application/octet-stream" && clean != "" {
		return clean
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}
	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return mimePDF
	case ".docx", ".doc":
		return mimeDOCX
	default:
		return clean
	}
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			return mimeDOCX
		}
	}
	return ""
}
