package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

// DOCX is a zip container; the document body lives in word/document.xml and
// visible text sits in <w:t> runs.
func extractDOCX(raw []byte) (*Result, error) {
	if !isZip(raw) {
		return nil, fmt.Errorf("%w: docx is not a valid zip container", appErr.ErrUnsupportedFormat)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	var file *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			file = f
			break
		}
	}
	if file == nil {
		return nil, fmt.Errorf("%w: zip does not look like docx", appErr.ErrUnsupportedFormat)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}
	return &Result{Text: collapseWhitespace(textRunsFromXML(data))}, nil
}

func textRunsFromXML(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "t":
			var v string
			_ = dec.DecodeElement(&v, &se)
			if v != "" {
				out.WriteString(v)
				out.WriteString(" ")
			}
		case "p":
			out.WriteString("\n")
		}
	}
	return out.String()
}
