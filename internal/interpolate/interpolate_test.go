package interpolate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/zugferd/internal/coerce"
	"github.com/rezonia/zugferd/internal/interpolate"
	"github.com/rezonia/zugferd/internal/profile"
	"github.com/rezonia/zugferd/internal/sample"
	"github.com/rezonia/zugferd/internal/schema"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

func normalize(t testing.TB, id string, doc sample.Document) (*profile.Profile, schema.Values) {
	t.Helper()
	p := profile.MustLookup(id)
	values, failures := schema.Validate(p.Schema, doc)
	require.Empty(t, failures)
	return p, values
}

func build(t *testing.T, id string, doc sample.Document) (*xmlnode.Node, string) {
	t.Helper()
	p, values := normalize(t, id, doc)
	tree, err := interpolate.Tree(p.Schema, values)
	require.NoError(t, err)
	out, err := xmlnode.FormatString(tree)
	require.NoError(t, err)
	return tree, out
}

func TestInterpolate_MinimumScenario(t *testing.T) {
	tree, out := build(t, profile.Minimum, sample.Minimum())

	id, ok := tree.FindText("rsm:CrossIndustryInvoice/rsm:ExchangedDocument/ram:ID")
	require.True(t, ok)
	assert.Equal(t, "471102", id)

	typeCode, ok := tree.FindText("rsm:CrossIndustryInvoice/rsm:ExchangedDocument/ram:TypeCode")
	require.True(t, ok)
	assert.Equal(t, "380", typeCode)

	_, ok = tree.Find("rsm:CrossIndustryInvoice/rsm:ExchangedDocument/ram:IncludedNote")
	assert.False(t, ok)
	assert.NotContains(t, out, "IncludedNote")

	guideline, ok := tree.FindText("rsm:CrossIndustryInvoice/rsm:ExchangedDocumentContext/ram:GuidelineSpecifiedDocumentContextParameter/ram:ID")
	require.True(t, ok)
	assert.Equal(t, profile.GuidelineMinimum, guideline)

	assert.Contains(t, out, `<udt:DateTimeString format="102">20241115</udt:DateTimeString>`)
	assert.Contains(t, out, `<ram:TaxTotalAmount currencyID="EUR">37.62</ram:TaxTotalAmount>`)
	assert.Contains(t, out, `<ram:ApplicableHeaderTradeDelivery/>`)
	assert.Contains(t, out, `<ram:ID schemeID="VA">DE123456789</ram:ID>`)
}

func TestInterpolate_RootAndBlockOrder(t *testing.T) {
	_, out := build(t, profile.Minimum, sample.Minimum())

	require.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	for _, ns := range interpolate.Namespaces {
		assert.Contains(t, out, `xmlns:`+ns.Prefix+`="`+ns.URI+`"`)
	}

	ctx := strings.Index(out, "<rsm:ExchangedDocumentContext>")
	doc := strings.Index(out, "<rsm:ExchangedDocument>")
	tx := strings.Index(out, "<rsm:SupplyChainTradeTransaction>")
	require.True(t, ctx > 0 && doc > 0 && tx > 0)
	assert.Less(t, ctx, doc)
	assert.Less(t, doc, tx)

	agreement := strings.Index(out, "<ram:ApplicableHeaderTradeAgreement>")
	delivery := strings.Index(out, "<ram:ApplicableHeaderTradeDelivery/>")
	settlement := strings.Index(out, "<ram:ApplicableHeaderTradeSettlement>")
	assert.Less(t, agreement, delivery)
	assert.Less(t, delivery, settlement)
}

func TestInterpolate_AmountFormatting(t *testing.T) {
	doc := sample.Minimum()
	summation := doc["transaction"].(sample.Document)["tradeSettlement"].(sample.Document)["monetarySummation"].(sample.Document)
	summation["taxTotal"] = sample.Document{"currencyCode": "EUR", "amount": "37.6"}
	summation["grandTotalAmount"] = 235.6

	_, out := build(t, profile.Minimum, doc)
	assert.Contains(t, out, `<ram:TaxTotalAmount currencyID="EUR">37.60</ram:TaxTotalAmount>`)
	assert.Contains(t, out, `<ram:GrandTotalAmount>235.60</ram:GrandTotalAmount>`)
}

func TestInterpolate_SiblingTaxRegistrations(t *testing.T) {
	tree, out := build(t, profile.BasicWL, sample.BasicWL())

	regs, ok := tree.Child("rsm:CrossIndustryInvoice").
		Child("rsm:SupplyChainTradeTransaction").
		Child("ram:ApplicableHeaderTradeAgreement").
		Child("ram:SellerTradeParty").
		Get("ram:SpecifiedTaxRegistration")
	require.True(t, ok)
	seq, ok := regs.([]interface{})
	require.True(t, ok)
	require.Len(t, seq, 2)

	var schemes []string
	for _, item := range seq {
		id := item.(*xmlnode.Node).Child("ram:ID")
		require.NotNil(t, id)
		scheme, _ := id.Get("@schemeID")
		schemes = append(schemes, scheme.(string))
	}
	assert.Equal(t, []string{"VA", "FC"}, schemes)
	assert.Equal(t, 2, strings.Count(out, "<ram:SpecifiedTaxRegistration>"))
}

func TestInterpolate_RepeatingGroupsKeepOrder(t *testing.T) {
	doc := sample.BasicWL()
	settlement := doc["transaction"].(sample.Document)["tradeSettlement"].(sample.Document)
	settlement["tradeTax"] = []interface{}{
		sample.Document{"calculatedAmount": "19.00", "basisAmount": "100.00", "categoryCode": "S", "rateApplicablePercent": "19"},
		sample.Document{"calculatedAmount": "7.00", "basisAmount": "100.00", "categoryCode": "S", "rateApplicablePercent": "7"},
		sample.Document{"calculatedAmount": "0", "basisAmount": "50.00", "categoryCode": "E", "rateApplicablePercent": "0", "exemptionReasonCode": "VATEX-EU-132"},
	}

	_, out := build(t, profile.BasicWL, doc)
	first := strings.Index(out, "<ram:RateApplicablePercent>19.00</ram:RateApplicablePercent>")
	second := strings.Index(out, "<ram:RateApplicablePercent>7.00</ram:RateApplicablePercent>")
	third := strings.Index(out, "<ram:ExemptionReasonCode>VATEX-EU-132</ram:ExemptionReasonCode>")
	require.True(t, first > 0 && second > 0 && third > 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.Equal(t, 3, strings.Count(out, "<ram:ApplicableTradeTax>"))

	notes := strings.Count(out, "<ram:IncludedNote>")
	assert.Equal(t, 2, notes)
}

func TestInterpolate_LineItem(t *testing.T) {
	tree, out := build(t, profile.EN16931, sample.Comfort())

	line := tree.Child("rsm:CrossIndustryInvoice").
		Child("rsm:SupplyChainTradeTransaction").
		Child("ram:IncludedSupplyChainTradeLineItem")
	require.NotNil(t, line)

	lineID, ok := line.FindText("ram:AssociatedDocumentLineDocument/ram:LineID")
	require.True(t, ok)
	assert.Equal(t, "1", lineID)

	assert.Contains(t, out, `<ram:GlobalID schemeID="0160">4012345001235</ram:GlobalID>`)
	assert.Contains(t, out, `<ram:BilledQuantity unitCode="H87">20.0000</ram:BilledQuantity>`)
	assert.Contains(t, out, `<ram:ChargeAmount>9.9000</ram:ChargeAmount>`)
	assert.Contains(t, out, `<ram:LineTotalAmount>198.00</ram:LineTotalAmount>`)

	// lines precede the header agreement
	assert.Less(t, strings.Index(out, "<ram:IncludedSupplyChainTradeLineItem>"), strings.Index(out, "<ram:ApplicableHeaderTradeAgreement>"))
}

func TestInterpolate_RoundTrip(t *testing.T) {
	for _, id := range profile.IDs() {
		t.Run(id, func(t *testing.T) {
			doc, ok := sample.For(id)
			require.True(t, ok)
			tree, out := build(t, id, doc)

			parsed, err := xmlnode.ParseString(out)
			require.NoError(t, err)
			assert.True(t, xmlnode.Equal(tree, parsed), "round trip mismatch:\n%s\n%s", tree, parsed)
		})
	}
}

func TestInterpolate_Deterministic(t *testing.T) {
	p, values := normalize(t, profile.XRechnung, sample.XRechnung())

	first, err := interpolate.Interpolate(p.Schema, values)
	require.NoError(t, err)
	second, err := interpolate.Interpolate(p.Schema, values)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProject_KeyRules(t *testing.T) {
	root := schema.Object("", "",
		schema.Leaf("a", "x:Wrap/x:A", coerce.Text),
		schema.Leaf("b", "x:Wrap/x:B", coerce.Text),
		schema.Leaf("again", "x:Wrap/x:A", coerce.Text),
		schema.Object("inline", "",
			schema.Leaf("c", "x:C", coerce.Text),
		),
		schema.Object("amount", "x:Amount",
			schema.Leaf("value", "#", coerce.Amount),
			schema.Leaf("currency", "@currencyID", coerce.Text),
		),
		schema.Leaf("tag", "x:Tag", coerce.Text).Repeated(0),
		schema.Object("item", "x:List/x:Item",
			schema.Leaf("id", "x:ID", coerce.Text),
		).Repeated(0),
	)

	values, failures := schema.Validate(root, map[string]interface{}{
		"a":      "1",
		"b":      "2",
		"again":  "3",
		"inline": map[string]interface{}{"c": "4"},
		"amount": map[string]interface{}{"value": "5", "currency": "EUR"},
		"tag":    []interface{}{"t1", "t2"},
		"item":   []interface{}{map[string]interface{}{"id": "i1"}, map[string]interface{}{"id": "i2"}},
	})
	require.Empty(t, failures)

	tree, err := interpolate.Project(root, values)
	require.NoError(t, err)

	assert.Equal(t, []string{"x:Wrap", "x:C", "x:Amount", "x:Tag", "x:List"}, tree.Keys())

	wraps, _ := tree.Get("x:Wrap")
	require.IsType(t, []interface{}{}, wraps)
	seq := wraps.([]interface{})
	require.Len(t, seq, 2)
	assert.Equal(t, []string{"x:A", "x:B"}, seq[0].(*xmlnode.Node).Keys())
	assert.Equal(t, []string{"x:A"}, seq[1].(*xmlnode.Node).Keys())

	amount := tree.Child("x:Amount")
	text, _ := amount.Text()
	currency, _ := amount.Get("@currencyID")
	assert.Equal(t, "5.00", text)
	assert.Equal(t, "EUR", currency)

	tags, _ := tree.Get("x:Tag")
	assert.Equal(t, []interface{}{"t1", "t2"}, tags)

	items, _ := tree.Child("x:List").Get("x:Item")
	require.IsType(t, []interface{}{}, items)
	assert.Len(t, items, 2)
	assert.Len(t, tree.Keys(), 5)
}

func TestProject_RejectsMismatchedValues(t *testing.T) {
	root := schema.Object("", "",
		schema.Object("party", "x:Party", schema.Leaf("name", "x:Name", coerce.Text)),
		schema.Leaf("date", "x:Date", coerce.Date),
	)

	_, err := interpolate.Project(root, schema.Values{"party": "not an object"})
	assert.Error(t, err)

	_, err = interpolate.Project(root, schema.Values{"date": 42})
	assert.Error(t, err)

	_, err = interpolate.Project(schema.Leaf("x", "x", coerce.Text), schema.Values{})
	assert.Error(t, err)
}

func TestEnvelope_Errors(t *testing.T) {
	ctx := xmlnode.New().Set("ram:ID", "x")

	tests := []struct {
		name string
		tree *xmlnode.Node
	}{
		{"nil", nil},
		{"missing block", xmlnode.New().Set(interpolate.BlockContext, ctx).Set(interpolate.BlockDocument, xmlnode.New())},
		{"unknown block", xmlnode.New().
			Set(interpolate.BlockContext, ctx).
			Set(interpolate.BlockDocument, xmlnode.New()).
			Set(interpolate.BlockTransaction, xmlnode.New()).
			Set("rsm:Other", xmlnode.New())},
		{"repeated block", xmlnode.New().
			Set(interpolate.BlockContext, ctx).
			Add(interpolate.BlockDocument, xmlnode.New()).
			Add(interpolate.BlockDocument, xmlnode.New()).
			Set(interpolate.BlockTransaction, xmlnode.New())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interpolate.Envelope(tt.tree)
			assert.Error(t, err)
		})
	}
}

func TestEnvelope_ReordersBlocks(t *testing.T) {
	tree := xmlnode.New().
		Set(interpolate.BlockTransaction, xmlnode.New()).
		Set(interpolate.BlockDocument, xmlnode.New()).
		Set(interpolate.BlockContext, xmlnode.New())

	wrapped, err := interpolate.Envelope(tree)
	require.NoError(t, err)

	root := wrapped.Child(interpolate.RootElement)
	require.NotNil(t, root)
	keys := root.Keys()
	assert.Equal(t, []string{interpolate.BlockContext, interpolate.BlockDocument, interpolate.BlockTransaction}, keys[len(keys)-3:])
	assert.Len(t, keys, len(interpolate.Namespaces)+3)
}

func BenchmarkInterpolate(b *testing.B) {
	p, values := normalize(b, profile.EN16931, sample.Comfort())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = interpolate.Interpolate(p.Schema, values)
	}
}
