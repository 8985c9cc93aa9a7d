package codelist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/zugferd/internal/codelist"
)

func TestLoad_AllEmbeddedLists(t *testing.T) {
	ids := codelist.IDs()
	require.NotEmpty(t, ids)

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			l, err := codelist.Load(id)
			require.NoError(t, err)
			assert.Equal(t, id, l.ID)
			assert.NotEmpty(t, l.Title)
			assert.Positive(t, l.Len())
		})
	}
}

func TestLoad_KnownIdentifiers(t *testing.T) {
	for _, id := range []string{
		codelist.DocumentType,
		codelist.VATCategory,
		codelist.PaymentMeans,
		codelist.TextSubject,
		codelist.AllowanceReason,
		codelist.Currency,
		codelist.Country,
		codelist.UnitOfMeasure,
		codelist.VATExemptionReason,
		codelist.ElectronicAddress,
		codelist.IdentificationCode,
		codelist.TaxCategoryTypeCode,
	} {
		_, err := codelist.Load(id)
		assert.NoError(t, err, id)
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := codelist.Load("does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestList_Lookup(t *testing.T) {
	tests := []struct {
		list string
		code string
		want bool
		name string
	}{
		{codelist.DocumentType, "380", true, "Commercial invoice"},
		{codelist.DocumentType, "381", true, "Credit note"},
		{codelist.DocumentType, "999", false, ""},
		{codelist.VATCategory, "S", true, "Standard rate"},
		{codelist.VATCategory, "X", false, ""},
		{codelist.Country, "DE", true, "Germany"},
		{codelist.Country, "NO", true, "Norway"},
		{codelist.Country, "de", false, ""},
		{codelist.Currency, "EUR", true, "Euro"},
		{codelist.UnitOfMeasure, "H87", true, "piece"},
		{codelist.PaymentMeans, "58", true, "SEPA credit transfer"},
	}

	for _, tt := range tests {
		t.Run(tt.list+"/"+tt.code, func(t *testing.T) {
			l := codelist.MustLoad(tt.list)
			assert.Equal(t, tt.want, l.Has(tt.code))

			e, ok := l.Lookup(tt.code)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.name, e.Name)
		})
	}
}

func TestList_CodesKeepOrder(t *testing.T) {
	l := codelist.MustLoad(codelist.VATCategory)
	codes := l.Codes()
	require.Len(t, codes, l.Len())
	assert.Equal(t, "AE", codes[0])
}

func TestList_UsageAndRemark(t *testing.T) {
	e, ok := codelist.MustLoad(codelist.VATCategory).Lookup("O")
	require.True(t, ok)
	assert.NotEmpty(t, e.Remark)

	e, ok = codelist.MustLoad(codelist.DocumentType).Lookup("380")
	require.True(t, ok)
	assert.NotEmpty(t, e.Usage)
}

func TestLoad_Cached(t *testing.T) {
	a, err := codelist.Load(codelist.Currency)
	require.NoError(t, err)
	b, err := codelist.Load(codelist.Currency)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { codelist.MustLoad("nope") })
}

func TestList_Accepts(t *testing.T) {
	tests := []struct {
		list string
		code string
		want bool
	}{
		{codelist.VATCategory, "S", true},
		{codelist.VATCategory, "X", false},
		{codelist.Country, "XI", true},
		{codelist.Country, "QQ", false},
		{codelist.UnitOfMeasure, "NAR", true},
		{codelist.UnitOfMeasure, "KTM", true},
		{codelist.PaymentMeans, "54", true},
		{codelist.VATExemptionReason, "VATEX-FR-FRANCHISE", true},
		{codelist.ElectronicAddress, "0204", true},
	}

	for _, tt := range tests {
		t.Run(tt.list+"/"+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, codelist.MustLoad(tt.list).Accepts(tt.code))
		})
	}
}

func TestList_OnlyCompleteListsAreClosed(t *testing.T) {
	closed := map[string]bool{
		codelist.Country:     true,
		codelist.VATCategory: true,
	}
	for _, id := range codelist.IDs() {
		assert.Equal(t, closed[id], codelist.MustLoad(id).Closed, id)
	}
}
