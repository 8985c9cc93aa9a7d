package pdfa_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/zugferd/internal/pdfa"
	"github.com/rezonia/zugferd/internal/profile"
)

// minimalPDF renders a one page document with a correct xref table
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

const invoiceXML = `<?xml version="1.0" encoding="UTF-8"?><rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"/>`

func TestEmbed(t *testing.T) {
	var out bytes.Buffer
	err := pdfa.Embed(context.Background(), bytes.NewReader(minimalPDF()), &out, []byte(invoiceXML), pdfa.Options{})
	require.NoError(t, err)
	require.True(t, pdfa.IsPDF(out.Bytes()))

	names, err := pdfa.Attachments(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{pdfa.FacturXName}, names)

	data, err := pdfa.Extract(bytes.NewReader(out.Bytes()), pdfa.FacturXName)
	require.NoError(t, err)
	assert.Equal(t, invoiceXML, string(data))

	// the file specification is left without a relationship entry
	assert.NotContains(t, out.String(), "/AFRelationship")
}

func TestEmbed_WithProperties(t *testing.T) {
	var out bytes.Buffer
	err := pdfa.Embed(context.Background(), bytes.NewReader(minimalPDF()), &out, []byte(invoiceXML), pdfa.Options{
		AttachmentName: pdfa.XRechnungName,
		Properties:     map[string]string{"invoice": "471102"},
	})
	require.NoError(t, err)

	names, err := pdfa.Attachments(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{pdfa.XRechnungName}, names)
}

func TestEmbed_Errors(t *testing.T) {
	var out bytes.Buffer

	err := pdfa.Embed(context.Background(), bytes.NewReader([]byte("not a pdf")), &out, []byte(invoiceXML), pdfa.Options{})
	assert.Error(t, err)

	err = pdfa.Embed(context.Background(), bytes.NewReader(minimalPDF()), &out, nil, pdfa.Options{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pdfa.Embed(ctx, bytes.NewReader(minimalPDF()), &out, []byte(invoiceXML), pdfa.Options{})
	assert.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, out.Len())
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, pdfa.XRechnungName, pdfa.AttachmentName(profile.XRechnung))
	assert.Equal(t, pdfa.FacturXName, pdfa.AttachmentName(profile.EN16931))
	assert.Equal(t, pdfa.FacturXName, pdfa.AttachmentName("unknown"))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, pdfa.IsPDF(minimalPDF()))
	assert.False(t, pdfa.IsPDF([]byte("<xml/>")))
	assert.False(t, pdfa.IsPDF(nil))
}

func TestExtract_Missing(t *testing.T) {
	_, err := pdfa.Extract(bytes.NewReader(minimalPDF()), pdfa.FacturXName)
	assert.Error(t, err)
}
