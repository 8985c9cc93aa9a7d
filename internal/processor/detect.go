package processor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rezonia/zugferd/internal/pdfa"
	"github.com/rezonia/zugferd/internal/profile"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

const guidelinePath = "rsm:CrossIndustryInvoice/rsm:ExchangedDocumentContext/ram:GuidelineSpecifiedDocumentContextParameter/ram:ID"

// ErrNoInvoice is returned when a PDF carries no invoice attachment
var ErrNoInvoice = errors.New("no invoice attachment found")

// DetectProfile reads the guideline identifier of an invoice and returns
// the matching profile
func DetectProfile(xml []byte) (*profile.Profile, error) {
	root, err := xmlnode.Parse(xml)
	if err != nil {
		return nil, err
	}
	guideline, ok := root.FindText(guidelinePath)
	if !ok || guideline == "" {
		return nil, fmt.Errorf("detect profile: document carries no guideline identifier")
	}
	p, ok := profile.ByGuideline(guideline)
	if !ok {
		return nil, fmt.Errorf("detect profile: %w: guideline %q", profile.ErrUnknownProfile, guideline)
	}
	return p, nil
}

// ExtractInvoice returns the invoice XML embedded into a PDF and the name
// of the attachment it was read from
func ExtractInvoice(pdf []byte) ([]byte, string, error) {
	names, err := pdfa.Attachments(bytes.NewReader(pdf))
	if err != nil {
		return nil, "", err
	}

	for _, want := range []string{pdfa.FacturXName, pdfa.XRechnungName} {
		for _, name := range names {
			if name != want {
				continue
			}
			data, err := pdfa.Extract(bytes.NewReader(pdf), name)
			if err != nil {
				return nil, "", err
			}
			return data, name, nil
		}
	}
	return nil, "", ErrNoInvoice
}
