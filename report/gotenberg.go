package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRenderFailed indicates Gotenberg answered with a non-success status.
var ErrRenderFailed = errors.New("report: gotenberg render failed")

// Paper sizes in inches, as expected by the Chromium route.
var (
	PaperA4     = Paper{Width: 8.27, Height: 11.7}
	PaperLetter = Paper{Width: 8.5, Height: 11}
	PaperLegal  = Paper{Width: 8.5, Height: 14}
)

// Paper is a page size in inches.
type Paper struct {
	Width  float64
	Height float64
}

// Document is an HTML page to convert.
type Document struct {
	HTML      string
	Paper     Paper
	Landscape bool
	// Margin applies to all four sides, in inches.
	Margin float64
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	paper      Paper
}

// NewClient constructs a new client. BIR forms are filed on legal paper, so
// that is the default page size.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		paper: PaperLegal,
	}
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts raw HTML into a PDF on the client's default paper.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	return c.Convert(ctx, Document{HTML: html, Paper: c.paper, Margin: 0.5})
}

// Convert posts the document to the Chromium HTML route and returns the PDF.
func (c *Client) Convert(ctx context.Context, doc Document) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, doc.HTML); err != nil {
		return nil, err
	}
	paper := doc.Paper
	if paper.Width <= 0 || paper.Height <= 0 {
		paper = c.paper
	}
	fields := map[string]string{
		"paperWidth":      formatInches(paper.Width),
		"paperHeight":     formatInches(paper.Height),
		"landscape":       strconv.FormatBool(doc.Landscape),
		"printBackground": "true",
	}
	if doc.Margin > 0 {
		for _, side := range []string{"marginTop", "marginBottom", "marginLeft", "marginRight"} {
			fields[side] = formatInches(doc.Margin)
		}
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", c.baseURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRenderFailed, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	return io.ReadAll(resp.Body)
}

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
