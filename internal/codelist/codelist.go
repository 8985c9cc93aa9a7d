// Package codelist exposes the UN/CEFACT, ISO and CEF code lists used by the
// invoice schemas. Lists are read-only YAML assets embedded into the binary
// and decoded on first use.
package codelist

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Identifiers of the embedded lists
const (
	DocumentType        = "untdid-1001"
	VATCategory         = "untdid-5305"
	PaymentMeans        = "untdid-4461"
	TextSubject         = "untdid-4451"
	AllowanceReason     = "untdid-5189"
	Currency            = "iso-4217"
	Country             = "iso-3166-1"
	UnitOfMeasure       = "unece-rec20"
	VATExemptionReason  = "vatex"
	ElectronicAddress   = "eas"
	IdentificationCode  = "iso-6523-icd"
	TaxCategoryTypeCode = "untdid-5153"
)

//go:embed data/*.yaml
var assets embed.FS

// Entry is one code of a list
type Entry struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Usage       string `yaml:"usage,omitempty"`
	Remark      string `yaml:"remark,omitempty"`
}

// List is a named, versioned code list. Only closed lists carry every
// code allowed by EN 16931; open lists document common codes.
type List struct {
	ID      string  `yaml:"id"`
	Title   string  `yaml:"title"`
	Version string  `yaml:"version"`
	Source  string  `yaml:"source"`
	Closed  bool    `yaml:"closed"`
	Entries []Entry `yaml:"entries"`

	index map[string]int
}

// Has returns true if code is part of the list
func (l *List) Has(code string) bool {
	_, ok := l.index[code]
	return ok
}

// Accepts reports whether code may be used. Open lists accept any code.
func (l *List) Accepts(code string) bool {
	return !l.Closed || l.Has(code)
}

// Lookup returns the entry for code
func (l *List) Lookup(code string) (Entry, bool) {
	i, ok := l.index[code]
	if !ok {
		return Entry{}, false
	}
	return l.Entries[i], true
}

// Codes returns all codes in declaration order
func (l *List) Codes() []string {
	codes := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		codes = append(codes, e.Code)
	}
	return codes
}

// Len returns the number of entries
func (l *List) Len() int {
	return len(l.Entries)
}

var (
	mu     sync.Mutex
	loaded = map[string]*List{}
)

// Load decodes the list with the given id
func Load(id string) (*List, error) {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loaded[id]; ok {
		return l, nil
	}

	data, err := assets.ReadFile(path.Join("data", id+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("code list %s: %w", id, err)
	}

	l, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("code list %s: %w", id, err)
	}
	if l.ID != id {
		return nil, fmt.Errorf("code list %s: asset declares id %q", id, l.ID)
	}

	loaded[id] = l
	return l, nil
}

// MustLoad is Load for package-level initialisation, panics on error
func MustLoad(id string) *List {
	l, err := Load(id)
	if err != nil {
		panic(err)
	}
	return l
}

// IDs returns the identifiers of all embedded lists, sorted
func IDs() []string {
	entries, err := assets.ReadDir("data")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if name := e.Name(); strings.HasSuffix(name, ".yaml") {
			ids = append(ids, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(ids)
	return ids
}

func decode(data []byte) (*List, error) {
	var l List
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	if len(l.Entries) == 0 {
		return nil, fmt.Errorf("no entries")
	}

	l.index = make(map[string]int, len(l.Entries))
	for i, e := range l.Entries {
		if e.Code == "" {
			return nil, fmt.Errorf("entry %d has no code", i)
		}
		if _, dup := l.index[e.Code]; dup {
			return nil, fmt.Errorf("duplicate code %q", e.Code)
		}
		l.index[e.Code] = i
	}
	return &l, nil
}
