package pdfextract

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads the entire content of r and extracts plain text from the PDF.
// Returns empty string and nil error if the PDF has no extractable text.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractFile extracts plain text from a PDF on disk. A missing file yields
// empty text rather than an error so corpus ingestion keeps going.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()
	return ExtractText(f)
}

// ExtractDir walks root and extracts text from every .pdf below it. Unreadable
// files are skipped; only texts with non-whitespace content are returned.
func ExtractDir(root string) []string {
	var texts []string
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}
	_ = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		txt, err := ExtractFile(path)
		if err != nil {
			return nil
		}
		if strings.TrimSpace(txt) != "" {
			texts = append(texts, txt)
		}
		return nil
	})
	return texts
}
