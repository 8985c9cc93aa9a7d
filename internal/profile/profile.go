// Package profile defines the Factur-X / ZUGFeRD conformance profiles.
//
// Every profile is a self-contained schema tree assembled from the group
// builders in this package. Trees are built once, checked, and shared
// read-only afterwards.
package profile

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rezonia/zugferd/internal/schema"
)

// Profile identifiers
const (
	Minimum   = "minimum"
	BasicWL   = "basic-wl"
	Basic     = "basic"
	EN16931   = "en16931"
	Extended  = "extended"
	XRechnung = "xrechnung"
)

// Guideline identifiers written to BT-24
const (
	GuidelineMinimum   = "urn:factur-x.eu:1p0:minimum"
	GuidelineBasicWL   = "urn:factur-x.eu:1p0:basicwl"
	GuidelineBasic     = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic"
	GuidelineEN16931   = "urn:cen.eu:en16931:2017"
	GuidelineExtended  = "urn:cen.eu:en16931:2017#conformant#urn:factur-x.eu:1p0:extended"
	GuidelineXRechnung = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"
)

// DocumentRoot is the absolute XPath every schema key is relative to
const DocumentRoot = "/rsm:CrossIndustryInvoice"

// ErrUnknownProfile is returned by Lookup for ids that name no profile
var ErrUnknownProfile = errors.New("unknown profile")

// Profile is a named schema variant of the invoice format
type Profile struct {
	ID        string
	Name      string
	Guideline string
	Schema    *schema.Field
	// ContextDefaults are the document context values, keyed by top level
	// field name, the schema fills in when the input omits them
	ContextDefaults map[string]interface{}
}

func (p *Profile) String() string {
	return p.ID
}

type definition struct {
	id        string
	name      string
	guideline string
	conf      conformance
}

var definitions = []definition{
	{Minimum, "Factur-X MINIMUM", GuidelineMinimum, conformance{level: levelMinimum}},
	{BasicWL, "Factur-X BASIC WL", GuidelineBasicWL, conformance{level: levelBasicWL}},
	{Basic, "Factur-X BASIC", GuidelineBasic, conformance{level: levelBasic}},
	{EN16931, "Factur-X EN 16931 (COMFORT)", GuidelineEN16931, conformance{level: levelEN16931}},
	{Extended, "Factur-X EXTENDED", GuidelineExtended, conformance{level: levelExtended}},
	{XRechnung, "XRechnung 3.0 (CII)", GuidelineXRechnung, conformance{level: levelEN16931, xrechnung: true}},
}

var (
	once     sync.Once
	profiles []*Profile
	byID     map[string]*Profile
)

func build(d definition) *Profile {
	defaults := map[string]interface{}{"guideline": d.guideline}
	if d.conf.xrechnung {
		defaults["businessProcessType"] = peppolBillingProcess
	}

	root := document(d.conf, defaults)
	if err := schema.Check(root); err != nil {
		panic(fmt.Sprintf("profile %s: %v", d.id, err))
	}
	schema.AnnotateXPath(root, DocumentRoot)

	return &Profile{
		ID:              d.id,
		Name:            d.name,
		Guideline:       d.guideline,
		Schema:          root,
		ContextDefaults: defaults,
	}
}

func load() {
	once.Do(func() {
		byID = make(map[string]*Profile, len(definitions))
		for _, d := range definitions {
			p := build(d)
			profiles = append(profiles, p)
			byID[p.ID] = p
		}
	})
}

// Lookup returns the profile with the given id. Ids are case-insensitive
// and accept "_" or " " in place of "-".
func Lookup(id string) (*Profile, error) {
	load()
	if p, ok := byID[normalize(id)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
}

// MustLookup is Lookup that panics on unknown ids
func MustLookup(id string) *Profile {
	p, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return p
}

// All returns every profile from MINIMUM to XRECHNUNG
func All() []*Profile {
	load()
	out := make([]*Profile, len(profiles))
	copy(out, profiles)
	return out
}

// IDs returns the identifiers of all profiles in order
func IDs() []string {
	ids := make([]string, 0, len(definitions))
	for _, d := range definitions {
		ids = append(ids, d.id)
	}
	return ids
}

// ByGuideline finds the profile whose BT-24 value is guideline
func ByGuideline(guideline string) (*Profile, bool) {
	load()
	for _, p := range profiles {
		if p.Guideline == guideline {
			return p, true
		}
	}
	return nil, false
}

func normalize(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.NewReplacer("_", "-", " ", "-").Replace(id)
	switch id {
	case "basicwl", "basic-wl":
		return BasicWL
	case "comfort", "en-16931":
		return EN16931
	}
	return id
}
