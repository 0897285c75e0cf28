package parser

import (
	"context"
	"errors"
	"io"
	"testing"

	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	docs  []*schema.Document
	err   error
	panic bool
	uri   string
}

func (s *stubParser) Parse(ctx context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	if s.panic {
		panic("bad xref")
	}
	s.uri = einoparser.GetCommonOptions(nil, opts...).URI
	_, _ = io.ReadAll(reader)
	return s.docs, s.err
}

func TestExtract_JoinsCleanedDocuments(t *testing.T) {
	p := &stubParser{docs: []*schema.Document{{Content: " Vendor: Acme\x00 "}, {Content: "Term: 12 months"}}}
	e := NewTextExtractorWithParser(p, zerolog.Nop())

	text := e.Extract(context.Background(), "msa.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, "Vendor: Acme\n\nTerm: 12 months", text)
	assert.Equal(t, "msa.pdf", p.uri)
}

func TestExtract_FailureYieldsEmptyText(t *testing.T) {
	e := NewTextExtractorWithParser(&stubParser{err: errors.New("corrupt")}, zerolog.Nop())
	assert.Equal(t, "", e.Extract(context.Background(), "broken.pdf", []byte("not a pdf")))
}

func TestExtract_PanicYieldsEmptyText(t *testing.T) {
	e := NewTextExtractorWithParser(&stubParser{panic: true}, zerolog.Nop())
	assert.NotPanics(t, func() {
		assert.Equal(t, "", e.Extract(context.Background(), "broken.pdf", []byte("x")))
	})
}

func TestExtract_EmptyInput(t *testing.T) {
	p := &stubParser{docs: []*schema.Document{{Content: "unused"}}}
	e := NewTextExtractorWithParser(p, zerolog.Nop())
	assert.Equal(t, "", e.Extract(context.Background(), "empty.pdf", nil))
}

func TestNewPDFTextExtractor(t *testing.T) {
	e, err := NewPDFTextExtractor(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "", e.Extract(context.Background(), "garbage.pdf", []byte("definitely not a pdf")))
}
