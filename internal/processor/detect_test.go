package processor_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/zugferd/internal/pdfa"
	"github.com/rezonia/zugferd/internal/processor"
	"github.com/rezonia/zugferd/internal/profile"
	"github.com/rezonia/zugferd/internal/sample"
)

func buildXML(t *testing.T, id string) []byte {
	t.Helper()
	raw, ok := sample.For(id)
	require.True(t, ok)
	p, err := processor.NewPipeline(id)
	require.NoError(t, err)
	doc, err := p.Create(raw)
	require.NoError(t, err)
	xml, err := doc.ToXML(context.Background())
	require.NoError(t, err)
	return xml
}

func TestDetectProfile(t *testing.T) {
	for _, id := range profile.IDs() {
		t.Run(id, func(t *testing.T) {
			p, err := processor.DetectProfile(buildXML(t, id))
			require.NoError(t, err)
			assert.Equal(t, id, p.ID)
		})
	}
}

func TestDetectProfile_Errors(t *testing.T) {
	_, err := processor.DetectProfile([]byte("<<<"))
	assert.Error(t, err)

	_, err = processor.DetectProfile([]byte(`<rsm:CrossIndustryInvoice xmlns:rsm="urn:x"/>`))
	assert.Error(t, err)

	xml := bytes.Replace(buildXML(t, profile.Minimum), []byte(profile.GuidelineMinimum), []byte("urn:example:unknown"), 1)
	_, err = processor.DetectProfile(xml)
	assert.ErrorIs(t, err, profile.ErrUnknownProfile)
}

func TestExtractInvoice(t *testing.T) {
	xml := buildXML(t, profile.XRechnung)

	var out bytes.Buffer
	err := pdfa.Embed(context.Background(), bytes.NewReader(minimalPDF()), &out, xml, pdfa.Options{AttachmentName: pdfa.XRechnungName})
	require.NoError(t, err)

	data, name, err := processor.ExtractInvoice(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, pdfa.XRechnungName, name)
	assert.Equal(t, xml, data)
}

func TestExtractInvoice_None(t *testing.T) {
	_, _, err := processor.ExtractInvoice(minimalPDF())
	assert.ErrorIs(t, err, processor.ErrNoInvoice)
}
