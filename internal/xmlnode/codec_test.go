package xmlnode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/zugferd/internal/xmlnode"
)

func sampleTree() *xmlnode.Node {
	date := xmlnode.New().Set("udt:DateTimeString", xmlnode.New().
		Set("@format", "102").
		Set("#", "20241115"))

	doc := xmlnode.New().
		Set("ram:ID", "471102").
		Set("ram:TypeCode", "380").
		Set("ram:IssueDateTime", date)

	total := xmlnode.New().Set("@currencyID", "EUR").Set("#", "37.62")

	tx := xmlnode.New()
	tx.Add("ram:IncludedSupplyChainTradeLineItem", xmlnode.New().Set("ram:ID", "1"))
	tx.Add("ram:IncludedSupplyChainTradeLineItem", xmlnode.New().Set("ram:ID", "2"))
	tx.Set("ram:ApplicableHeaderTradeDelivery", xmlnode.New())
	tx.Set("ram:TaxTotalAmount", total)

	root := xmlnode.New().
		Set("@xmlns:rsm", "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100").
		Set("@xmlns:ram", "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100").
		Set("rsm:ExchangedDocument", doc).
		Set("rsm:SupplyChainTradeTransaction", tx)

	return xmlnode.New().Set("rsm:CrossIndustryInvoice", root)
}

func TestFormat_Conventions(t *testing.T) {
	out, err := xmlnode.FormatString(sampleTree())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<ram:ID>471102</ram:ID>`)
	assert.Contains(t, out, `<udt:DateTimeString format="102">20241115</udt:DateTimeString>`)
	assert.Contains(t, out, `<ram:TaxTotalAmount currencyID="EUR">37.62</ram:TaxTotalAmount>`)
	assert.Contains(t, out, `<ram:ApplicableHeaderTradeDelivery/>`)
	assert.Equal(t, 2, strings.Count(out, "<ram:IncludedSupplyChainTradeLineItem>"))
}

func TestFormat_ElementOrder(t *testing.T) {
	out, err := xmlnode.FormatString(sampleTree())
	require.NoError(t, err)

	first := strings.Index(out, "<rsm:ExchangedDocument>")
	second := strings.Index(out, "<rsm:SupplyChainTradeTransaction>")
	require.True(t, first > 0 && second > 0)
	assert.Less(t, first, second)
}

func TestFormat_Errors(t *testing.T) {
	tests := []struct {
		name string
		tree *xmlnode.Node
	}{
		{"nil", nil},
		{"two roots", xmlnode.New().Set("a", "1").Set("b", "2")},
		{"attribute root", xmlnode.New().Set("@a", "1")},
		{"repeated root", xmlnode.New().Add("a", "1").Add("a", "2")},
		{"non string attribute", xmlnode.New().Set("a", xmlnode.New().Set("@x", xmlnode.New()))},
		{"unsupported value", xmlnode.New().Set("a", xmlnode.New().Set("b", 42))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := xmlnode.Format(tt.tree)
			require.Error(t, err)
		})
	}
}

func TestFormat_WithoutDeclaration(t *testing.T) {
	out, err := xmlnode.FormatString(xmlnode.New().Set("a", "b"), xmlnode.WithoutDeclaration(), xmlnode.WithIndent(-1))
	require.NoError(t, err)
	assert.Equal(t, "<a>b</a>", out)
}

func TestParse_Conventions(t *testing.T) {
	tree, err := xmlnode.ParseString(`<?xml version="1.0" encoding="UTF-8"?>
<root xmlns:ram="urn:x">
  <ram:Name>Lieferant GmbH</ram:Name>
  <ram:Amount currencyID="EUR">37.62</ram:Amount>
  <ram:Empty/>
  <ram:Line><ram:ID>1</ram:ID></ram:Line>
  <ram:Line><ram:ID>2</ram:ID></ram:Line>
</root>`)
	require.NoError(t, err)

	root := tree.Child("root")
	require.NotNil(t, root)

	xmlns, ok := root.Get("@xmlns:ram")
	require.True(t, ok)
	assert.Equal(t, "urn:x", xmlns)

	name, ok := root.Get("ram:Name")
	require.True(t, ok)
	assert.Equal(t, "Lieferant GmbH", name)

	amount := root.Child("ram:Amount")
	require.NotNil(t, amount)
	text, ok := amount.Text()
	require.True(t, ok)
	assert.Equal(t, "37.62", text)

	empty := root.Child("ram:Empty")
	require.NotNil(t, empty)
	assert.True(t, empty.IsEmpty())

	lines, ok := root.Get("ram:Line")
	require.True(t, ok)
	require.IsType(t, []interface{}{}, lines)
	assert.Len(t, lines, 2)

	id, ok := tree.FindText("root/ram:Line/ram:ID")
	require.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestParse_Errors(t *testing.T) {
	_, err := xmlnode.ParseString("")
	require.ErrorIs(t, err, xmlnode.ErrNoRoot)

	_, err = xmlnode.ParseString("   \n")
	require.ErrorIs(t, err, xmlnode.ErrNoRoot)

	_, err = xmlnode.ParseString("<a><b></a>")
	require.Error(t, err)
}

func TestParseReader(t *testing.T) {
	tree, err := xmlnode.ParseReader(strings.NewReader(`<a><b>c</b></a>`))
	require.NoError(t, err)
	v, ok := tree.FindText("a/b")
	require.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestRoundTrip(t *testing.T) {
	tree := sampleTree()

	out, err := xmlnode.Format(tree)
	require.NoError(t, err)

	parsed, err := xmlnode.Parse(out)
	require.NoError(t, err)

	assert.True(t, xmlnode.Equal(tree, parsed), "round trip mismatch:\n%s\n%s", tree, parsed)
}

func TestRoundTrip_EscapedText(t *testing.T) {
	tree := xmlnode.New().Set("note", xmlnode.New().
		Set("@lang", "de").
		Set("#", `Müller & Söhne <GmbH> "Sonder"`))

	out, err := xmlnode.Format(tree)
	require.NoError(t, err)
	assert.Contains(t, string(out), "&amp;")

	parsed, err := xmlnode.Parse(out)
	require.NoError(t, err)
	assert.True(t, xmlnode.Equal(tree, parsed))
}

func BenchmarkFormat(b *testing.B) {
	tree := sampleTree()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = xmlnode.Format(tree)
	}
}
