package mediatools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFPreviewer renders the first page of a PDF with pdftoppm.
type PDFPreviewer struct {
	Binary string
	Run    Runner
}

func NewPDFPreviewer(binary string) *PDFPreviewer {
	return &PDFPreviewer{Binary: binaryOr(binary, "pdftoppm"), Run: ExecRunner}
}

// RenderFirstPage writes page one of path to out (a .jpg path) at dpi.
func (p *PDFPreviewer) RenderFirstPage(ctx context.Context, path string, dpi int, out string) error {
	if dpi <= 0 {
		dpi = 200
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create preview dir: %w", err)
	}
	// pdftoppm appends the extension itself.
	root := strings.TrimSuffix(out, filepath.Ext(out))
	_, err := p.Run(ctx, binaryOr(p.Binary, "pdftoppm"),
		"-jpeg", "-f", "1", "-l", "1", "-r", strconv.Itoa(dpi), "-singlefile",
		path, root,
	)
	if err != nil {
		return err
	}
	if root+".jpg" != out {
		return os.Rename(root+".jpg", out)
	}
	return nil
}

// ExtractPDFText returns the plain text of every page.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}
