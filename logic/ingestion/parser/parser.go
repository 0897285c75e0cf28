package parser

import (
	"bytes"
	"context"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"agreement-radar/logic/ingestion/processors"
)

// PDFTextExtractor turns uploaded bytes into best-effort plain text with the
// eino pdf parser. It never fails: a document that cannot be read yields "".
type PDFTextExtractor struct {
	parser einoparser.Parser
	log    zerolog.Logger
}

func NewPDFTextExtractor(ctx context.Context, log zerolog.Logger) (*PDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, err
	}
	return &PDFTextExtractor{parser: p, log: log}, nil
}

// NewTextExtractorWithParser lets callers plug any eino document parser.
func NewTextExtractorWithParser(p einoparser.Parser, log zerolog.Logger) *PDFTextExtractor {
	return &PDFTextExtractor{parser: p, log: log}
}

func (e *PDFTextExtractor) Extract(ctx context.Context, fileName string, data []byte) (text string) {
	defer func() {
		// the pdf reader panics on some malformed xref tables
		if r := recover(); r != nil {
			e.log.Warn().Str("file", fileName).Interface("panic", r).Msg("pdf text extraction panicked")
			text = ""
		}
	}()

	if len(data) == 0 {
		return ""
	}

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data), einoparser.WithURI(fileName))
	if err != nil {
		e.log.Warn().Err(err).Str("file", fileName).Msg("pdf text extraction failed, continuing with empty text")
		return ""
	}
	return processors.JoinText(docs)
}
