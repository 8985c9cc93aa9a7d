// Package pdfa embeds invoice XML into PDF documents
package pdfa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rezonia/zugferd/internal/profile"
)

// Attachment names expected by receiving systems
const (
	FacturXName   = "factur-x.xml"
	XRechnungName = "xrechnung.xml"
)

var pdfMagic = []byte("%PDF")

// Options tune the embedding
type Options struct {
	// AttachmentName overrides the name derived from the profile
	AttachmentName string
	// Properties are written to the document information dictionary
	Properties map[string]string
}

// AttachmentName returns the file name used for profileID
func AttachmentName(profileID string) string {
	if profileID == profile.XRechnung {
		return XRechnungName
	}
	return FacturXName
}

// IsPDF reports whether data starts with the PDF header
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Embed attaches xml to the PDF read from rs and writes the result to w.
// Nothing is written to w when embedding fails.
//
// Only the embedded file and the document properties are added. The file
// specification carries no AFRelationship and no Factur-X XMP metadata is
// written, so the output is not a conformant Factur-X or PDF/A-3 container
// by itself. Start from a PDF/A-3 input and add the XMP packet separately
// when conformance is required.
func Embed(ctx context.Context, rs io.ReadSeeker, w io.Writer, xml []byte, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(xml) == 0 {
		return fmt.Errorf("embed: empty xml")
	}
	name := opts.AttachmentName
	if name == "" {
		name = FacturXName
	}

	dir, err := os.MkdirTemp("", "pdfa-*")
	if err != nil {
		return fmt.Errorf("embed: create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, xml, 0o600); err != nil {
		return fmt.Errorf("embed: write attachment: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	var attached bytes.Buffer
	if err := api.AddAttachments(rs, &attached, []string{path}, false, conf); err != nil {
		return fmt.Errorf("embed: attach %s: %w", name, err)
	}

	if len(opts.Properties) == 0 {
		_, err = w.Write(attached.Bytes())
		return err
	}

	var out bytes.Buffer
	if err := api.AddProperties(bytes.NewReader(attached.Bytes()), &out, opts.Properties, conf); err != nil {
		return fmt.Errorf("embed: set properties: %w", err)
	}
	_, err = w.Write(out.Bytes())
	return err
}

// Attachments lists the embedded file names of a PDF
func Attachments(rs io.ReadSeeker) ([]string, error) {
	list, err := api.Attachments(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.FileName)
	}
	return names, nil
}

// Extract returns the content of the named attachment
func Extract(rs io.ReadSeeker, name string) ([]byte, error) {
	list, err := api.ExtractAttachmentsRaw(rs, "", []string{name}, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}
	for _, a := range list {
		if a.FileName == name && a.Reader != nil {
			return io.ReadAll(a)
		}
	}
	return nil, fmt.Errorf("extract %s: attachment not found", name)
}
