package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	pdflib "github.com/ledongthuc/pdf"

	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

// Result is the normalized form of one raw document.
type Result struct {
	Text  string
	Pages int
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{2,}`)
)

// Extract converts a raw file into clean plain text. The declared type is
// checked against magic bytes so a mislabeled binary fails loudly instead of
// producing garbage chunks. No side effects.
func Extract(declaredType string, raw []byte) (*Result, error) {
	if len(raw) == 0 {
		return nil, appErr.ErrEmptyContent
	}
	var (
		res *Result
		err error
	)
	switch strings.ToLower(strings.TrimSpace(declaredType)) {
	case "pdf":
		res, err = extractPDF(raw)
	case "docx":
		res, err = extractDOCX(raw)
	case "txt":
		res = &Result{Text: collapseWhitespace(string(raw))}
	case "md", "markdown":
		res = &Result{Text: collapseWhitespace(stripMarkdown(string(raw)))}
	case "html", "htm":
		res, err = extractHTML(raw)
	default:
		return nil, fmt.Errorf("%w: %s", appErr.ErrUnsupportedFormat, declaredType)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, appErr.ErrEmptyContent
	}
	if res.Pages == 0 {
		res.Pages = estimatePages(res.Text)
	}
	return res, nil
}

// TypeFromFilename maps a file name to a supported source type.
func TypeFromFilename(name string) (string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "pdf", nil
	case strings.HasSuffix(lower, ".txt"):
		return "txt", nil
	case strings.HasSuffix(lower, ".docx"):
		return "docx", nil
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return "md", nil
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return "html", nil
	}
	return "", fmt.Errorf("%w: %s", appErr.ErrUnsupportedFormat, name)
}

func extractPDF(raw []byte) (*Result, error) {
	if !isPDF(raw) {
		return nil, fmt.Errorf("%w: missing %%PDF header", appErr.ErrUnsupportedFormat)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("pdf plaintext: %w", err)
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("pdf read: %w", err)
	}
	return &Result{
		Text:  collapseWhitespace(string(data)),
		Pages: reader.NumPage(),
	}, nil
}

func extractHTML(raw []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, nav, footer, header").Remove()
	body := doc.Find("body")
	text := body.Text()
	if strings.TrimSpace(text) == "" {
		// Fragments without a body element still carry text.
		text = doc.Text()
	}
	return &Result{Text: collapseWhitespace(text)}, nil
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = newlineRuns.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// estimatePages mirrors the rough ~300 words per page rule used for
// non-paginated formats.
func estimatePages(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return (words + 299) / 300
}
