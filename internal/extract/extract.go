// Package extract turns remote lecture files (PDF, slide decks) into plain
// text for prompt assembly.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

type Extractor struct {
	client *http.Client
}

func New(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the file and returns its lowercased filename and bytes.
// Any non-2xx status is a fetch failure.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, fmt.Errorf("download failed (%d)", resp.StatusCode)
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	return fileName(rawURL), blob, nil
}

func fileName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return strings.ToLower(path.Base(u.Path))
	}
	parts := strings.Split(rawURL, "/")
	return strings.ToLower(parts[len(parts)-1])
}

// Text dispatches on the filename extension.
func Text(fname string, blob []byte) (string, error) {
	switch {
	case strings.HasSuffix(fname, ".pdf"):
		return pdfText(blob)
	case strings.HasSuffix(fname, ".pptx"), strings.HasSuffix(fname, ".ppt"):
		return pptxText(bytes.NewReader(blob), int64(len(blob)))
	default:
		return "", ErrUnsupportedFormat
	}
}

// FromURLs downloads and extracts each URL best-effort: a failing file is
// logged and skipped, the rest still contribute. Each successful file is
// framed with a "### <fname>" header, matching what the prompt expects.
func (e *Extractor) FromURLs(ctx context.Context, urls []string) string {
	var sections []string
	for _, u := range urls {
		fname, blob, err := e.Fetch(ctx, u)
		if err != nil {
			log.Printf("extract: skipping %s: %v", u, err)
			continue
		}
		text, err := Text(fname, blob)
		if err != nil {
			log.Printf("extract: skipping %s: %v", u, err)
			continue
		}
		sections = append(sections, fmt.Sprintf("\n### %s\n%s", fname, text))
	}
	return strings.Join(sections, "\n")
}
