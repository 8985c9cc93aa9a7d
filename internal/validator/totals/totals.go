// Package totals checks the document level monetary summation of a built
// invoice against its lines and its own components.
package totals

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dec "github.com/rezonia/zugferd/internal/decimal"
	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/xmlnode"
)

// ID identifies the validator in results and errors
const ID = "totals"

const (
	transaction = "rsm:CrossIndustryInvoice/rsm:SupplyChainTradeTransaction"
	settlement  = transaction + "/ram:ApplicableHeaderTradeSettlement"
	summation   = settlement + "/ram:SpecifiedTradeSettlementHeaderMonetarySummation"
	currency    = settlement + "/ram:InvoiceCurrencyCode"
	lineTotals  = transaction + "/ram:IncludedSupplyChainTradeLineItem/ram:SpecifiedLineTradeSettlement" +
		"/ram:SpecifiedTradeSettlementLineMonetarySummation/ram:LineTotalAmount"
)

// Violation is one summation rule the document breaks
type Violation struct {
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: expected %s, got %s", v.Rule, v.Message, v.Expected, v.Actual)
}

// Validator recomputes the header totals. It supports every profile.
type Validator struct{}

// New creates the validator
func New() *Validator {
	return &Validator{}
}

// ID returns the validator id
func (v *Validator) ID() string {
	return ID
}

// Hooks attaches the validator to xml.build.after
func (v *Validator) Hooks() map[hooks.Stage]hooks.Handler {
	return hooks.AsPlugin(v).Hooks()
}

// Run checks the summation of xml
func (v *Validator) Run(ctx context.Context, xml []byte, hc *hooks.Context) (*hooks.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := xmlnode.Parse(xml)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}

	violations, err := check(root)
	if err != nil {
		return nil, err
	}

	result := hooks.NewResult(ID)
	for _, violation := range violations {
		result.AddError(violation.String())
	}
	if len(violations) > 0 {
		result.Detail = violations
		hc.Log().Debug("summation mismatch", zap.Int("violations", len(violations)))
	}
	return result, nil
}

type amounts struct {
	root *xmlnode.Node
	err  error
}

// get returns the amount at path and whether it is present
func (a *amounts) get(path string) (decimal.Decimal, bool) {
	s, ok := a.root.FindText(path)
	if !ok || a.err != nil {
		return dec.Zero, false
	}
	d, err := dec.FromString(s)
	if err != nil {
		a.err = fmt.Errorf("totals: %s: %w", path, err)
		return dec.Zero, false
	}
	return d, true
}

// or returns the amount at path, zero when absent
func (a *amounts) or(path string) decimal.Decimal {
	d, _ := a.get(path)
	return d
}

func check(root *xmlnode.Node) ([]Violation, error) {
	a := &amounts{root: root}
	var out []Violation
	expect := func(rule, msg string, want, got decimal.Decimal) {
		if !want.Equal(got) {
			out = append(out, Violation{
				Rule:     rule,
				Message:  msg,
				Expected: dec.Format(want, dec.AmountScale),
				Actual:   dec.Format(got, dec.AmountScale),
			})
		}
	}

	lineTotal, hasLineTotal := a.get(summation + "/ram:LineTotalAmount")
	if hasLineTotal {
		lines, err := lineAmounts(root)
		if err != nil {
			return nil, err
		}
		if len(lines) > 0 {
			expect("BR-CO-10", "sum of invoice line net amounts", dec.Sum(lines), lineTotal)
		}

		basis := lineTotal.
			Sub(a.or(summation + "/ram:AllowanceTotalAmount")).
			Add(a.or(summation + "/ram:ChargeTotalAmount"))
		expect("BR-CO-13", "total amount without VAT", basis, a.or(summation+"/ram:TaxBasisTotalAmount"))
	}

	taxBasis := a.or(summation + "/ram:TaxBasisTotalAmount")
	grand, hasGrand := a.get(summation + "/ram:GrandTotalAmount")
	taxTotal, err := invoiceTaxTotal(root)
	if err != nil {
		return nil, err
	}
	if hasGrand {
		expect("BR-CO-15", "total amount with VAT", taxBasis.Add(taxTotal), grand)
	}

	if due, ok := a.get(summation + "/ram:DuePayableAmount"); ok && hasGrand {
		want := grand.
			Sub(a.or(summation + "/ram:TotalPrepaidAmount")).
			Add(a.or(summation + "/ram:RoundingAmount"))
		expect("BR-CO-16", "amount due for payment", want, due)
	}

	if a.err != nil {
		return nil, a.err
	}
	return out, nil
}

func lineAmounts(root *xmlnode.Node) ([]decimal.Decimal, error) {
	texts := root.FindAll(lineTotals)
	out := make([]decimal.Decimal, 0, len(texts))
	for i, s := range texts {
		d, err := dec.FromString(s)
		if err != nil {
			return nil, fmt.Errorf("totals: line %d: %w", i+1, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// invoiceTaxTotal returns BT-110, the VAT total in the invoice currency.
// BT-111 shares the element and differs by its currencyID.
func invoiceTaxTotal(root *xmlnode.Node) (decimal.Decimal, error) {
	v, ok := root.Find(summation)
	node, isNode := v.(*xmlnode.Node)
	if !ok || !isNode {
		return dec.Zero, nil
	}
	raw, ok := node.Get("ram:TaxTotalAmount")
	if !ok {
		return dec.Zero, nil
	}
	items, isSeq := raw.([]interface{})
	if !isSeq {
		items = []interface{}{raw}
	}

	want, _ := root.FindText(currency)
	for _, item := range items {
		text, cur := "", ""
		switch t := item.(type) {
		case string:
			text = t
		case *xmlnode.Node:
			text, _ = t.Text()
			if c, ok := t.Get("@currencyID"); ok {
				cur, _ = c.(string)
			}
		}
		if cur != "" && want != "" && cur != want {
			continue
		}
		d, err := dec.FromString(text)
		if err != nil {
			return dec.Zero, fmt.Errorf("totals: tax total: %w", err)
		}
		return d, nil
	}
	return dec.Zero, nil
}
