package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// A DOCX file is a zip archive; the document body lives in
// word/document.xml as WordprocessingML. Text runs are <w:t> elements and
// paragraphs are <w:p> elements.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			document = file
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("docx archive has no word/document.xml")
	}

	reader, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer reader.Close()

	return decodeDocumentXML(reader)
}

func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var builder strings.Builder
	inTextRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inTextRun {
				builder.Write(element)
			}
		}
	}

	return builder.String(), nil
}
