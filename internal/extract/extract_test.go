package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Txt(t *testing.T) {
	res, err := Extract("txt", []byte("hello   world\r\n\r\n\r\n  second   line  "))
	require.NoError(t, err)
	require.Equal(t, "hello world\nsecond line", res.Text)
	require.Equal(t, 1, res.Pages)
}

func TestExtract_HTMLStripsChrome(t *testing.T) {
	page := `<html><head><style>body{color:red}</style></head>
<body><nav>menu</nav><script>var x=1;</script>
<h1>Title</h1><p>Body   text here.</p><footer>footer junk</footer></body></html>`
	res, err := Extract("html", []byte(page))
	require.NoError(t, err)
	require.Contains(t, res.Text, "Title")
	require.Contains(t, res.Text, "Body text here.")
	require.NotContains(t, res.Text, "menu")
	require.NotContains(t, res.Text, "var x=1")
	require.NotContains(t, res.Text, "footer junk")
	require.NotContains(t, res.Text, "color:red")
}

func TestExtract_HTMLFragmentWithoutBody(t *testing.T) {
	res, err := Extract("html", []byte("<p>just a fragment</p>"))
	require.NoError(t, err)
	require.Contains(t, res.Text, "just a fragment")
}

func TestExtract_Markdown(t *testing.T) {
	md := "# Heading\n\nSome *emphasis* and [a link](https://example.com).\n\n```\ncode line\n```\n"
	res, err := Extract("md", []byte(md))
	require.NoError(t, err)
	require.Contains(t, res.Text, "Heading")
	require.Contains(t, res.Text, "emphasis")
	require.Contains(t, res.Text, "a link")
	require.NotContains(t, res.Text, "](")
	require.NotContains(t, res.Text, "# ")
}

func TestExtract_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
</w:body>
</w:document>`
	res, err := Extract("docx", buildDocx(t, doc))
	require.NoError(t, err)
	require.Contains(t, res.Text, "First paragraph.")
	require.Contains(t, res.Text, "Second paragraph.")
}

func TestExtract_DocxRejectsNonZip(t *testing.T) {
	_, err := Extract("docx", []byte("plain text pretending to be docx"))
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
}

func TestExtract_PDFRejectsMissingMagic(t *testing.T) {
	_, err := Extract("pdf", []byte("not a pdf at all"))
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
}

func TestExtract_EmptyContent(t *testing.T) {
	_, err := Extract("txt", nil)
	require.ErrorIs(t, err, appErr.ErrEmptyContent)

	_, err = Extract("txt", []byte("   \n\n\t  "))
	require.ErrorIs(t, err, appErr.ErrEmptyContent)
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := Extract("xlsx", []byte("data"))
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
}

func TestTypeFromFilename(t *testing.T) {
	cases := map[string]string{
		"report.PDF":   "pdf",
		"notes.txt":    "txt",
		"spec.docx":    "docx",
		"readme.md":    "md",
		"guide.html":   "html",
		"index.htm":    "html",
		"doc.markdown": "md",
	}
	for name, want := range cases {
		got, err := TypeFromFilename(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
	_, err := TypeFromFilename("archive.zip")
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
}

func TestEstimatePages(t *testing.T) {
	require.Equal(t, 0, estimatePages(""))
	require.Equal(t, 1, estimatePages("one two three"))
	words := bytes.Repeat([]byte("word "), 301)
	require.Equal(t, 2, estimatePages(string(words)))
}
