package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// ExtractDOCX returns the body paragraphs of a .docx container joined by newlines,
// in document order. Paragraphs nested in tables or text boxes are not included.
func ExtractDOCX(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == docxBodyPart {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%s not found", docxBodyPart)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// readParagraphs streams WordprocessingML and collects w:p elements that are direct
// children of w:body. Element names are matched on their local part.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
		nested     int
		sawBody    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, name)

			switch {
			case name == "body":
				sawBody = true
			case name == "p" && parent == "body":
				inPara = true
				current.Reset()
			case !inPara:
			case name == "p":
				nested++
			case nested > 0:
			case parent != "r":
			case name == "t":
				inText = true
			case name == "tab":
				current.WriteByte('\t')
			case name == "br", name == "cr":
				current.WriteByte('\n')
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch {
			case name == "t":
				inText = false
			case name == "p" && inPara && len(stack) > 0 && stack[len(stack)-1] == "body":
				paragraphs = append(paragraphs, current.String())
				inPara = false
			case name == "p" && nested > 0:
				nested--
			}

		case xml.CharData:
			if inPara && inText {
				current.Write(t)
			}
		}
	}

	if !sawBody {
		return nil, errors.New("document has no body")
	}
	return paragraphs, nil
}
