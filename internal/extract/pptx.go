package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// A .pptx file is a zip archive; slide text lives in ppt/slides/slideN.xml as
// DrawingML <a:t> runs grouped under <a:p> paragraphs per shape.
var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func pptxText(r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("parse pptx: %w", err)
	}

	type slideFile struct {
		index int
		f     *zip.File
	}
	var slides []slideFile
	for _, f := range zr.File {
		m := slidePathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slideFile{index: n, f: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].index < slides[j].index })

	var out []string
	for _, s := range slides {
		text, err := slideText(s.f)
		if err != nil {
			return "", err
		}
		out = append(out, text)
	}
	return strings.Join(out, "\n"), nil
}

// slideText joins a slide's text-bearing shapes with newlines. Shape
// boundaries are <p:txBody> elements; runs within a shape concatenate into
// one string per paragraph.
func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var shapes []string
	var cur strings.Builder
	inShape := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse slide %s: %w", f.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "txBody":
				inShape = true
				cur.Reset()
			case "t":
				if inShape {
					var run string
					if err := dec.DecodeElement(&run, &t); err != nil {
						return "", err
					}
					cur.WriteString(run)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "txBody" {
				inShape = false
				if s := cur.String(); s != "" {
					shapes = append(shapes, s)
				}
			}
		}
	}
	return strings.Join(shapes, "\n"), nil
}
