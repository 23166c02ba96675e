package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

// TextExtractor turns an uploaded file into plain text. The second return
// value is false when the format is not supported; that skips the file
// rather than failing the batch.
type TextExtractor interface {
	Extract(ctx context.Context, path, filename string) (string, bool, error)
}

// Extractor handles the three supported formats: PDF through the converter
// service (after a pdfcpu header/footer crop), plain text directly, and CSV
// flattened row by row.
type Extractor struct {
	converterURL string
	client       *http.Client
	logger       *zap.Logger
}

var _ TextExtractor = (*Extractor)(nil)

func NewExtractor(converterURL string, logger *zap.Logger) *Extractor {
	return &Extractor{
		converterURL: converterURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, path, filename string) (string, bool, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := e.extractPDF(ctx, path)
		return text, true, err
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", true, fmt.Errorf("could not read file %s: %w", filename, err)
		}
		return string(data), true, nil
	case ".csv":
		text, err := extractCSV(path)
		if err != nil {
			return "", true, fmt.Errorf("could not read file %s: %w", filename, err)
		}
		return text, true, nil
	default:
		return "", false, nil
	}
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	if err := cropHeaderFooter(path, path, 46, 57); err != nil {
		e.logger.Warn("pdf crop failed, converting uncropped file", zap.Error(err))
	}
	return e.convertFile(ctx, path)
}

type converterResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
}

// convertFile ships the PDF to the converter service and returns its text
// content.
func (e *Extractor) convertFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy pdf into form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.converterURL, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call converter: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read converter response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("converter error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var convResp converterResponse
	if err := json.Unmarshal(body, &convResp); err != nil {
		return "", fmt.Errorf("unmarshal converter response: %w", err)
	}
	return convResp.Document.MdContent, nil
}

// cropHeaderFooter trims running headers and footers so they do not pollute
// every chunk. top and bottom are in points (1 pt = 1/72 inch).
func cropHeaderFooter(inputPath, outputPath string, top, bottom float64) error {
	conf := api.LoadConfiguration()
	pages := []string{"1-"}

	cropStr := fmt.Sprintf("%.2f 0 %.2f 0", top, bottom)
	box, err := pdfmodel.ParseBox(cropStr, pdftypes.POINTS)
	if err != nil {
		return fmt.Errorf("failed to parse crop box: %w", err)
	}

	if err := api.CropFile(inputPath, outputPath, pages, box, conf); err != nil {
		return fmt.Errorf("failed to crop PDF: %w", err)
	}
	return nil
}

func extractCSV(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var sb strings.Builder
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(record, ", "))
	}
	return sb.String(), nil
}
