package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/transx/internal/models"
	"github.com/desertthunder/transx/internal/shared"
)

// Format is a local export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts the format names used by the export command.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ExportToMarkdown renders the export payload as a single Markdown document.
func ExportToMarkdown(export models.ExportRequest) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	if export.Author != "" {
		fmt.Fprintf(&buf, "**Tác giả**: %s\n\n", export.Author)
	}
	fmt.Fprintf(&buf, "**Số chương**: %d\n", len(export.Chapters))

	for _, ch := range export.Chapters {
		fmt.Fprintf(&buf, "\n## %s\n\n%s\n", ch.Title, strings.TrimSpace(ch.Content))
	}

	return buf.Bytes(), nil
}

// ExportToText renders the export payload as plain text.
func ExportToText(export models.ExportRequest) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title)
	if export.Author != "" {
		fmt.Fprintf(&buf, "%s\n", export.Author)
	}

	for _, ch := range export.Chapters {
		fmt.Fprintf(&buf, "\n%s\n\n%s\n", ch.Title, strings.TrimSpace(ch.Content))
	}

	return buf.Bytes(), nil
}

// ExportToCSV converts the export payload to CSV with columns: Number, Title, Content
func ExportToCSV(export models.ExportRequest) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Number", "Title", "Content"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, ch := range export.Chapters {
		if err := writer.Write([]string{strconv.Itoa(i + 1), ch.Title, ch.Content}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// Render encodes the export payload in the given format.
func Render(export models.ExportRequest, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatCSV:
		return ExportToCSV(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteExport writes the export payload to {dir}/{title}{ext} and returns the path.
func WriteExport(export models.ExportRequest, format Format, dir string) (string, error) {
	data, err := Render(export, format)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, shared.SafeFilename(export.Title)+format.Ext())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
