package pdfgen

import (
	"context"
	"fmt"
	"log"
	"strings"

	"crypto-volume-toolkit/internal/domain"
)

// Converter renders an HTML document to PDF bytes.
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
	Name() string
}

const (
	EngineAuto   = "auto"
	EngineAPI    = "api"
	EngineChrome = "chrome"
)

// Select picks the converter for engine. "api" and "auto" use html2pdf.app
// when the user's key is usable; otherwise local headless Chrome is used.
func Select(engine string, keys domain.APIKeys) (Converter, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case EngineAPI:
		if !domain.Usable(keys.HTML2PDF) {
			return nil, fmt.Errorf("pdf engine %q needs an html2pdf.app key", engine)
		}
		return NewHTML2PDFClient(keys.HTML2PDF), nil
	case EngineChrome:
		return NewChromeRenderer(), nil
	case "", EngineAuto:
		if domain.Usable(keys.HTML2PDF) {
			return NewHTML2PDFClient(keys.HTML2PDF), nil
		}
		log.Println("No html2pdf.app key, rendering PDF with local Chrome")
		return NewChromeRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", engine)
	}
}
