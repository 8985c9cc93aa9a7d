package profile

import (
	"github.com/rezonia/zugferd/internal/codelist"
	"github.com/rezonia/zugferd/internal/coerce"
	"github.com/rezonia/zugferd/internal/schema"
)

// level orders the conformance levels, each one a superset of the previous
type level int

const (
	levelMinimum level = iota
	levelBasicWL
	levelBasic
	levelEN16931
	levelExtended
)

// conformance selects the fields and requirements a profile carries
type conformance struct {
	level     level
	xrechnung bool
}

func (c conformance) atLeast(l level) bool {
	return c.level >= l
}

type role int

const (
	roleSeller role = iota
	roleBuyer
	roleTaxRepresentative
	roleShipTo
	roleShipFrom
	rolePayee
)

const (
	vatTypeCode           = "VAT"
	peppolBillingProcess  = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
	supportingDocTypeCode = "916"
)

var (
	documentTypes    = coerce.Code(codelist.DocumentType)
	vatCategories    = coerce.Code(codelist.VATCategory)
	taxTypes         = coerce.Code(codelist.TaxCategoryTypeCode)
	currencies       = coerce.Code(codelist.Currency)
	countries        = coerce.Code(codelist.Country)
	units            = coerce.Code(codelist.UnitOfMeasure)
	paymentMeansCode = coerce.Code(codelist.PaymentMeans)
	subjectCodes     = coerce.Code(codelist.TextSubject)
	exemptionCodes   = coerce.Code(codelist.VATExemptionReason)
	schemeIDs        = coerce.IdentifierIn(codelist.IdentificationCode)
	addressIDs       = coerce.IdentifierIn(codelist.ElectronicAddress)

	vatID   = coerce.SchemedIdentifier("VA")
	localID = coerce.SchemedIdentifier("FC")
)

// shape collects child fields in XML order
type shape []*schema.Field

func (s *shape) add(fs ...*schema.Field) {
	*s = append(*s, fs...)
}

func (s *shape) addIf(ok bool, fs ...*schema.Field) {
	if ok {
		s.add(fs...)
	}
}

func text(name, key string) *schema.Field {
	return schema.Leaf(name, key, coerce.Text)
}

func amount(name, key string) *schema.Field {
	return schema.Leaf(name, key, coerce.Amount)
}

func date(name, key string) *schema.Field {
	return schema.Leaf(name, key, coerce.Date)
}

// inheritedOrRequired requires the field only when no ancestor provides path
func inheritedOrRequired(path string) schema.Requirement {
	return func(s *schema.Scope) bool {
		_, ok := s.Inherited(path)
		return !ok
	}
}

// vatRate is required for every category but "not subject to VAT"
func vatRate(key string) *schema.Field {
	return schema.Leaf("rateApplicablePercent", key, coerce.Percent).
		RequiredIf(schema.NotIn("categoryCode", "O")).
		Describe("BT-119 VAT category rate")
}

func taxCategory(name, key string) *schema.Field {
	return schema.Object(name, key,
		schema.Leaf("typeCode", "ram:TypeCode", taxTypes).Optional().WithDefault(schema.Static(vatTypeCode)),
		schema.Leaf("categoryCode", "ram:CategoryCode", vatCategories).Describe("BT-151 VAT category code"),
		vatRate("ram:RateApplicablePercent"),
	)
}

func postalAddress(c conformance, r role) *schema.Field {
	var s shape
	strict := c.xrechnung && (r == roleSeller || r == roleBuyer)

	postcode := text("postcode", "ram:PostcodeCode").Optional().Describe("BT-38 postcode")
	city := text("city", "ram:CityName").Optional().Describe("BT-37 city")
	if strict {
		postcode.Required = schema.Always
		city.Required = schema.Always
	}

	s.addIf(c.atLeast(levelBasicWL),
		postcode,
		text("lineOne", "ram:LineOne").Optional().Describe("BT-35 address line 1"),
		text("lineTwo", "ram:LineTwo").Optional().Describe("BT-36 address line 2"),
		text("lineThree", "ram:LineThree").Optional().Describe("BT-162 address line 3"),
		city,
	)
	s.add(schema.Leaf("countryCode", "ram:CountryID", countries).Describe("BT-40 country code"))
	s.addIf(c.atLeast(levelBasicWL),
		text("countrySubdivision", "ram:CountrySubDivisionName").Optional().Describe("BT-39 country subdivision"),
	)

	address := schema.Object("postalAddress", "ram:PostalTradeAddress", s...).Describe("BG-5 postal address")
	switch r {
	case roleSeller, roleTaxRepresentative:
	case roleBuyer:
		if !c.atLeast(levelBasicWL) {
			return nil
		}
	default:
		address.Optional()
	}
	return address
}

func contact(c conformance, r role) *schema.Field {
	strict := c.xrechnung && r == roleSeller
	person := text("personName", "ram:PersonName").Optional().Describe("BT-41 contact point")
	phone := text("telephone", "ram:TelephoneUniversalCommunication/ram:CompleteNumber").Optional().Describe("BT-42 contact telephone")
	email := text("email", "ram:EmailURIUniversalCommunication/ram:URIID").Optional().Describe("BT-43 contact email")
	if strict {
		person.Required = schema.Always
		phone.Required = schema.Always
		email.Required = schema.Always
	}

	f := schema.Object("contact", "ram:DefinedTradeContact",
		person,
		text("departmentName", "ram:DepartmentName").Optional(),
		phone,
		email,
	).Describe("BG-6 contact")
	if !strict {
		f.Optional()
	}
	return f
}

// sellerVATRequired requires a VAT id unless the seller is identified otherwise
func sellerVATRequired(s *schema.Scope) bool {
	if s.Has("localIdentifier") {
		return false
	}
	return schema.UnlessAny("legalOrganization.identifier", "identifier", "globalIdentifier")(s.Parent())
}

func taxRegistration(c conformance, r role) *schema.Field {
	switch r {
	case roleSeller:
		return schema.Object("taxRegistration", "",
			schema.Leaf("vatIdentifier", "ram:SpecifiedTaxRegistration/ram:ID", vatID).
				RequiredIf(sellerVATRequired).Describe("BT-31 seller VAT identifier"),
			schema.Leaf("localIdentifier", "ram:SpecifiedTaxRegistration/ram:ID", localID).
				Optional().Describe("BT-32 seller tax registration identifier"),
		).RequiredIf(schema.UnlessAny("legalOrganization.identifier", "identifier", "globalIdentifier"))
	case roleTaxRepresentative:
		return schema.Object("taxRegistration", "",
			schema.Leaf("vatIdentifier", "ram:SpecifiedTaxRegistration/ram:ID", vatID).Describe("BT-63 tax representative VAT identifier"),
		)
	case roleBuyer:
		if !c.atLeast(levelBasicWL) {
			return nil
		}
		return schema.Object("taxRegistration", "",
			schema.Leaf("vatIdentifier", "ram:SpecifiedTaxRegistration/ram:ID", vatID).Optional().Describe("BT-48 buyer VAT identifier"),
		).Optional()
	}
	return nil
}

func tradeParty(c conformance, r role, name, key string) *schema.Field {
	var s shape

	s.addIf(c.atLeast(levelBasicWL) && r != roleTaxRepresentative,
		schema.Leaf("identifier", "ram:ID", coerce.Identifier).Optional().Describe("BT-29 party identifier"),
		schema.Leaf("globalIdentifier", "ram:GlobalID", schemeIDs).Optional().Describe("BT-29-1 global identifier"),
	)

	partyName := text("name", "ram:Name").Describe("BT-27 party name")
	if r == roleShipTo || r == roleShipFrom {
		partyName.Optional()
	}
	s.add(partyName)
	s.addIf(c.atLeast(levelEN16931) && r == roleSeller,
		text("description", "ram:Description").Optional().Describe("BT-33 seller additional legal information"),
	)

	if r == roleSeller || r == roleBuyer || r == rolePayee {
		var legal shape
		legal.add(schema.Leaf("identifier", "ram:ID", schemeIDs).Optional().Describe("BT-30 legal registration identifier"))
		legal.addIf(c.atLeast(levelBasicWL) && r != rolePayee,
			text("tradingName", "ram:TradingBusinessName").Optional().Describe("BT-28 trading name"),
		)
		s.add(schema.Object("legalOrganization", "ram:SpecifiedLegalOrganization", legal...).Optional())
	}

	if c.atLeast(levelEN16931) && (r == roleSeller || r == roleBuyer) {
		s.add(contact(c, r))
	}

	if r != rolePayee {
		if address := postalAddress(c, r); address != nil {
			s.add(address)
		}
	}

	if c.atLeast(levelBasicWL) && (r == roleSeller || r == roleBuyer) {
		uri := schema.Leaf("electronicAddress", "ram:URIUniversalCommunication/ram:URIID", addressIDs).Describe("BT-34 electronic address")
		if !c.xrechnung {
			uri.Optional()
		}
		s.add(uri)
	}

	if tr := taxRegistration(c, r); tr != nil {
		s.add(tr)
	}

	return schema.Object(name, key, s...)
}

func allowanceCharge(c conformance, header bool) *schema.Field {
	var s shape
	s.add(
		schema.Leaf("chargeIndicator", "ram:ChargeIndicator", coerce.Indicator).Describe("charge (true) or allowance (false)"),
		schema.Leaf("calculationPercent", "ram:CalculationPercent", coerce.Percent).Optional().Describe("BT-94 percentage"),
		amount("basisAmount", "ram:BasisAmount").Optional().Describe("BT-93 base amount"),
		amount("actualAmount", "ram:ActualAmount").Describe("BT-92 amount"),
		schema.Leaf("reasonCode", "ram:ReasonCode", coerce.AnyCode).Optional().Describe("BT-98 reason code"),
		text("reason", "ram:Reason").RequiredIf(schema.UnlessAny("reasonCode")).Describe("BT-97 reason"),
	)
	if header {
		s.add(taxCategory("categoryTradeTax", "ram:CategoryTradeTax"))
	}
	return schema.Object("allowanceCharge", "ram:SpecifiedTradeAllowanceCharge", s...).Repeated(0).Optional()
}

func quantity(name, key string, unitRequired bool) *schema.Field {
	unit := schema.Leaf("unitCode", "@unitCode", units)
	if !unitRequired {
		unit.Optional()
	}
	return schema.Object(name, key,
		schema.Leaf("quantity", "#", coerce.Quantity),
		unit,
	)
}

func lineItem(c conformance) *schema.Field {
	var doc shape
	doc.add(text("identifier", "ram:AssociatedDocumentLineDocument/ram:LineID").Describe("BT-126 line identifier"))
	doc.addIf(c.atLeast(levelExtended),
		text("parentLineId", "ram:AssociatedDocumentLineDocument/ram:ParentLineID").Optional(),
		schema.Object("includedNote", "ram:AssociatedDocumentLineDocument/ram:IncludedNote",
			text("content", "ram:Content"),
			schema.Leaf("subjectCode", "ram:SubjectCode", subjectCodes).Optional(),
		).Repeated(0).Optional(),
	)
	doc.addIf(c.level == levelEN16931,
		text("note", "ram:AssociatedDocumentLineDocument/ram:IncludedNote/ram:Content").Optional().Describe("BT-127 line note"),
	)

	var product shape
	product.add(schema.Leaf("globalIdentifier", "ram:GlobalID", schemeIDs).Optional().Describe("BT-157 item standard identifier"))
	product.addIf(c.atLeast(levelEN16931),
		text("sellerAssignedId", "ram:SellerAssignedID").Optional().Describe("BT-155 item seller identifier"),
		text("buyerAssignedId", "ram:BuyerAssignedID").Optional().Describe("BT-156 item buyer identifier"),
	)
	product.addIf(c.atLeast(levelExtended),
		text("industryAssignedId", "ram:IndustryAssignedID").Optional(),
	)
	product.add(text("name", "ram:Name").Describe("BT-153 item name"))
	product.addIf(c.atLeast(levelEN16931),
		text("description", "ram:Description").Optional().Describe("BT-154 item description"),
		schema.Object("characteristic", "ram:ApplicableProductCharacteristic",
			text("description", "ram:Description").Describe("BT-160 attribute name"),
			text("value", "ram:Value").Describe("BT-161 attribute value"),
		).Repeated(0).Optional().Describe("BG-32 item attributes"),
		schema.Object("classification", "ram:DesignatedProductClassification",
			text("code", "ram:ClassCode/#").Describe("BT-158 item classification identifier"),
			schema.Leaf("listId", "ram:ClassCode/@listID", coerce.AnyCode).Describe("BT-158-1 scheme identifier"),
			text("listVersion", "ram:ClassCode/@listVersionID").Optional().Describe("BT-158-2 scheme version"),
		).Repeated(0).Optional(),
		schema.Leaf("originCountry", "ram:OriginTradeCountry/ram:ID", countries).Optional().Describe("BT-159 item country of origin"),
	)

	var agreement shape
	agreement.addIf(c.atLeast(levelEN16931),
		text("buyerOrderLineReference", "ram:BuyerOrderReferencedDocument/ram:LineID").Optional().Describe("BT-132 referenced purchase order line"),
	)
	agreement.add(
		schema.Object("grossPrice", "ram:GrossPriceProductTradePrice",
			schema.Leaf("chargeAmount", "ram:ChargeAmount", coerce.Price).Describe("BT-148 item gross price"),
			quantity("basisQuantity", "ram:BasisQuantity", false).Optional(),
			schema.Object("allowance", "ram:AppliedTradeAllowanceCharge",
				schema.Leaf("chargeIndicator", "ram:ChargeIndicator", coerce.Indicator).Optional().WithDefault(schema.Static(false)),
				schema.Leaf("actualAmount", "ram:ActualAmount", coerce.Price).Describe("BT-147 item price discount"),
			).Optional(),
		).Optional(),
		schema.Object("netPrice", "ram:NetPriceProductTradePrice",
			schema.Leaf("chargeAmount", "ram:ChargeAmount", coerce.Price).Describe("BT-146 item net price"),
			quantity("basisQuantity", "ram:BasisQuantity", false).Optional().Describe("BT-149 item price base quantity"),
		),
	)

	var settlement shape
	settlement.add(
		taxCategory("tradeTax", "ram:ApplicableTradeTax"),
		schema.Object("billingPeriod", "ram:BillingSpecifiedPeriod",
			date("startDate", "ram:StartDateTime").Optional().Describe("BT-134 line period start"),
			date("endDate", "ram:EndDateTime").Optional().Describe("BT-135 line period end"),
		).Optional(),
		allowanceCharge(c, false),
		amount("lineTotalAmount", "ram:SpecifiedTradeSettlementLineMonetarySummation/ram:LineTotalAmount").Describe("BT-131 line net amount"),
	)
	settlement.addIf(c.atLeast(levelEN16931),
		text("receivableAccount", "ram:ReceivableSpecifiedTradeAccountingAccount/ram:ID").Optional().Describe("BT-133 line buyer accounting reference"),
	)

	return schema.Object("line", "ram:IncludedSupplyChainTradeLineItem",
		append(doc,
			schema.Object("product", "ram:SpecifiedTradeProduct", product...),
			schema.Object("agreement", "ram:SpecifiedLineTradeAgreement", agreement...),
			schema.Object("delivery", "ram:SpecifiedLineTradeDelivery",
				quantity("billedQuantity", "ram:BilledQuantity", true).Describe("BT-129 invoiced quantity"),
			),
			schema.Object("settlement", "ram:SpecifiedLineTradeSettlement", settlement...),
		)...,
	).Repeated(1).Describe("BG-25 invoice line")
}

func headerAgreement(c conformance) *schema.Field {
	var s shape

	buyerReference := text("buyerReference", "ram:BuyerReference").Describe("BT-10 buyer reference")
	if !c.xrechnung {
		buyerReference.Optional()
	}
	s.add(
		buyerReference,
		tradeParty(c, roleSeller, "seller", "ram:SellerTradeParty").Describe("BG-4 seller"),
		tradeParty(c, roleBuyer, "buyer", "ram:BuyerTradeParty").Describe("BG-7 buyer"),
	)
	s.addIf(c.atLeast(levelBasicWL),
		tradeParty(c, roleTaxRepresentative, "sellerTaxRepresentative", "ram:SellerTaxRepresentativeTradeParty").Optional().Describe("BG-11 seller tax representative"),
	)
	s.addIf(c.atLeast(levelEN16931),
		text("sellerOrderReference", "ram:SellerOrderReferencedDocument/ram:IssuerAssignedID").Optional().Describe("BT-14 sales order reference"),
	)
	s.add(text("buyerOrderReference", "ram:BuyerOrderReferencedDocument/ram:IssuerAssignedID").Optional().Describe("BT-13 purchase order reference"))
	s.addIf(c.atLeast(levelBasicWL),
		text("contractReference", "ram:ContractReferencedDocument/ram:IssuerAssignedID").Optional().Describe("BT-12 contract reference"),
	)
	s.addIf(c.atLeast(levelEN16931),
		schema.Object("additionalReference", "ram:AdditionalReferencedDocument",
			schema.Leaf("identifier", "ram:IssuerAssignedID", coerce.Identifier).Describe("BT-122 supporting document reference"),
			text("uri", "ram:URIID").Optional().Describe("BT-124 external document location"),
			schema.Leaf("typeCode", "ram:TypeCode", coerce.AnyCode).Optional().WithDefault(schema.Static(supportingDocTypeCode)),
			text("name", "ram:Name").Optional().Describe("BT-123 supporting document description"),
			schema.Leaf("referenceTypeCode", "ram:ReferenceTypeCode", coerce.AnyCode).Optional(),
		).Repeated(0).Optional().Describe("BG-24 additional supporting documents"),
		schema.Object("procuringProject", "ram:SpecifiedProcuringProject",
			text("identifier", "ram:ID").Describe("BT-11 project reference"),
			text("name", "ram:Name"),
		).Optional(),
	)

	return schema.Object("tradeAgreement", "ram:ApplicableHeaderTradeAgreement", s...)
}

func headerDelivery(c conformance) *schema.Field {
	var s shape
	s.addIf(c.atLeast(levelBasicWL),
		tradeParty(c, roleShipTo, "shipTo", "ram:ShipToTradeParty").Optional().Describe("BG-13 deliver to"),
	)
	s.addIf(c.atLeast(levelExtended),
		tradeParty(c, roleShipFrom, "shipFrom", "ram:ShipFromTradeParty").Optional(),
	)
	s.addIf(c.atLeast(levelBasicWL),
		date("actualDeliveryDate", "ram:ActualDeliverySupplyChainEvent/ram:OccurrenceDateTime").Optional().Describe("BT-72 actual delivery date"),
		text("despatchAdviceReference", "ram:DespatchAdviceReferencedDocument/ram:IssuerAssignedID").Optional().Describe("BT-16 despatch advice reference"),
	)
	s.addIf(c.atLeast(levelEN16931),
		text("receivingAdviceReference", "ram:ReceivingAdviceReferencedDocument/ram:IssuerAssignedID").Optional().Describe("BT-15 receiving advice reference"),
	)

	// The element is mandatory even when it carries nothing
	return schema.Object("tradeDelivery", "ram:ApplicableHeaderTradeDelivery", s...).
		Optional().
		WithDefault(schema.Static(map[string]interface{}{}))
}

func paymentMeans(c conformance) *schema.Field {
	var s shape
	s.add(schema.Leaf("typeCode", "ram:TypeCode", paymentMeansCode).Describe("BT-81 payment means type code"))
	s.addIf(c.atLeast(levelEN16931),
		text("information", "ram:Information").Optional().Describe("BT-82 payment means text"),
		schema.Object("card", "ram:ApplicableTradeSettlementFinancialCard",
			text("number", "ram:ID").Describe("BT-87 payment card primary account number"),
			text("holderName", "ram:CardholderName").Optional().Describe("BT-88 payment card holder name"),
		).Optional(),
	)
	s.add(text("payerAccount", "ram:PayerPartyDebtorFinancialAccount/ram:IBANID").Optional().Describe("BT-91 debited account identifier"))

	var account shape
	account.add(text("iban", "ram:IBANID").RequiredIf(schema.UnlessAny("proprietaryId")).Describe("BT-84 payment account identifier"))
	account.addIf(c.atLeast(levelEN16931), text("accountName", "ram:AccountName").Optional().Describe("BT-85 payment account name"))
	account.add(text("proprietaryId", "ram:ProprietaryID").Optional())
	s.add(schema.Object("payeeAccount", "ram:PayeePartyCreditorFinancialAccount", account...).Optional())

	s.addIf(c.atLeast(levelEN16931),
		text("payeeInstitution", "ram:PayeeSpecifiedCreditorFinancialInstitution/ram:BICID").Optional().Describe("BT-86 payment service provider identifier"),
	)

	minItems := 0
	if c.xrechnung {
		minItems = 1
	}
	f := schema.Object("paymentMeans", "ram:SpecifiedTradeSettlementPaymentMeans", s...).Repeated(minItems).Describe("BG-16 payment instructions")
	if !c.xrechnung {
		f.Optional()
	}
	return f
}

func headerTax(c conformance) *schema.Field {
	var s shape
	s.add(
		amount("calculatedAmount", "ram:CalculatedAmount").Describe("BT-117 VAT category tax amount"),
		schema.Leaf("typeCode", "ram:TypeCode", taxTypes).Optional().WithDefault(schema.Static(vatTypeCode)),
		text("exemptionReason", "ram:ExemptionReason").Optional().Describe("BT-120 VAT exemption reason text"),
		amount("basisAmount", "ram:BasisAmount").Describe("BT-116 VAT category taxable amount"),
		schema.Leaf("categoryCode", "ram:CategoryCode", vatCategories).Describe("BT-118 VAT category code"),
		schema.Leaf("exemptionReasonCode", "ram:ExemptionReasonCode", exemptionCodes).
			RequiredIf(schema.AllOf(
				schema.WhenIn("categoryCode", "E", "AE", "K", "G", "O"),
				schema.UnlessAny("exemptionReason"),
			)).
			Describe("BT-121 VAT exemption reason code"),
		schema.Leaf("dueDateTypeCode", "ram:DueDateTypeCode", coerce.AnyCode).Optional().Describe("BT-8 value added tax point date code"),
		vatRate("ram:RateApplicablePercent"),
	)
	return schema.Object("tradeTax", "ram:ApplicableTradeTax", s...).Repeated(1).Describe("BG-23 VAT breakdown")
}

func monetarySummation(c conformance) *schema.Field {
	var s shape
	s.addIf(c.atLeast(levelBasicWL),
		amount("lineTotalAmount", "ram:LineTotalAmount").Describe("BT-106 sum of invoice line net amount"),
		amount("chargeTotalAmount", "ram:ChargeTotalAmount").Optional().Describe("BT-108 sum of charges"),
		amount("allowanceTotalAmount", "ram:AllowanceTotalAmount").Optional().Describe("BT-107 sum of allowances"),
	)
	s.add(
		amount("taxBasisTotalAmount", "ram:TaxBasisTotalAmount").Describe("BT-109 invoice total amount without VAT"),
		schema.Object("taxTotal", "ram:TaxTotalAmount",
			amount("amount", "#"),
			schema.Leaf("currencyCode", "@currencyID", currencies).
				RequiredIf(inheritedOrRequired("currencyCode")).
				WithDefault(schema.Inherit("currencyCode")),
		).Optional().Describe("BT-110 invoice total VAT amount"),
	)
	s.addIf(c.atLeast(levelBasicWL),
		schema.Object("taxTotalInTaxCurrency", "ram:TaxTotalAmount",
			amount("amount", "#"),
			schema.Leaf("currencyCode", "@currencyID", currencies).
				RequiredIf(inheritedOrRequired("taxCurrencyCode")).
				WithDefault(schema.Inherit("taxCurrencyCode")),
		).Optional().Describe("BT-111 invoice total VAT amount in accounting currency"),
	)
	s.addIf(c.atLeast(levelEN16931),
		amount("roundingAmount", "ram:RoundingAmount").Optional().Describe("BT-114 rounding amount"),
	)
	s.add(amount("grandTotalAmount", "ram:GrandTotalAmount").Describe("BT-112 invoice total amount with VAT"))
	s.addIf(c.atLeast(levelBasicWL),
		amount("totalPrepaidAmount", "ram:TotalPrepaidAmount").Optional().Describe("BT-113 paid amount"),
	)
	s.add(amount("duePayableAmount", "ram:DuePayableAmount").Describe("BT-115 amount due for payment"))

	return schema.Object("monetarySummation", "ram:SpecifiedTradeSettlementHeaderMonetarySummation", s...).Describe("BG-22 document totals")
}

func headerSettlement(c conformance) *schema.Field {
	var s shape
	s.addIf(c.atLeast(levelBasicWL),
		text("creditorReference", "ram:CreditorReferenceID").Optional().Describe("BT-90 bank assigned creditor identifier"),
		text("paymentReference", "ram:PaymentReference").Optional().Describe("BT-83 remittance information"),
		schema.Leaf("taxCurrencyCode", "ram:TaxCurrencyCode", currencies).Optional().Describe("BT-6 VAT accounting currency code"),
	)
	s.add(schema.Leaf("currencyCode", "ram:InvoiceCurrencyCode", currencies).Describe("BT-5 invoice currency code"))
	s.addIf(c.atLeast(levelBasicWL),
		tradeParty(c, rolePayee, "payee", "ram:PayeeTradeParty").Optional().Describe("BG-10 payee"),
		paymentMeans(c),
		headerTax(c),
		schema.Object("billingPeriod", "ram:BillingSpecifiedPeriod",
			date("startDate", "ram:StartDateTime").Optional().Describe("BT-73 invoicing period start date"),
			date("endDate", "ram:EndDateTime").Optional().Describe("BT-74 invoicing period end date"),
		).Optional().Describe("BG-14 invoicing period"),
		allowanceCharge(c, true).Describe("BG-20 document level allowances, BG-21 charges"),
		schema.Object("paymentTerms", "ram:SpecifiedTradePaymentTerms",
			text("description", "ram:Description").Optional().Describe("BT-20 payment terms"),
			date("dueDate", "ram:DueDateDateTime").Optional().Describe("BT-9 payment due date"),
			text("directDebitMandateId", "ram:DirectDebitMandateID").Optional().Describe("BT-89 mandate reference identifier"),
		).Optional(),
	)
	s.add(monetarySummation(c))

	if c.atLeast(levelBasicWL) {
		preceding := schema.Object("precedingInvoice", "ram:InvoiceReferencedDocument",
			text("reference", "ram:IssuerAssignedID").Describe("BT-25 preceding invoice reference"),
			schema.Leaf("issueDate", "ram:FormattedIssueDateTime", coerce.FormattedDate).Optional().Describe("BT-26 preceding invoice issue date"),
		).Optional().Describe("BG-3 preceding invoice reference")
		if c.atLeast(levelExtended) {
			preceding.Repeated(0)
		}
		s.add(
			preceding,
			text("receivableAccount", "ram:ReceivableSpecifiedTradeAccountingAccount/ram:ID").Optional().Describe("BT-19 buyer accounting reference"),
		)
	}

	return schema.Object("tradeSettlement", "ram:ApplicableHeaderTradeSettlement", s...)
}

func transaction(c conformance) *schema.Field {
	var s shape
	s.addIf(c.atLeast(levelBasic), lineItem(c))
	s.add(headerAgreement(c), headerDelivery(c), headerSettlement(c))
	return schema.Object("transaction", "rsm:SupplyChainTradeTransaction", s...)
}

// document builds the profile tree. Context fields named in defaults are
// filled with those values when the input omits them.
func document(c conformance, defaults map[string]interface{}) *schema.Field {
	defaulted := func(f *schema.Field) *schema.Field {
		if v, ok := defaults[f.Name]; ok {
			f.WithDefault(schema.Static(v))
		}
		return f
	}

	var s shape
	s.addIf(c.atLeast(levelExtended),
		schema.Leaf("testIndicator", "rsm:ExchangedDocumentContext/ram:TestIndicator", coerce.Indicator).Optional(),
	)
	s.add(
		defaulted(text("businessProcessType", "rsm:ExchangedDocumentContext/ram:BusinessProcessSpecifiedDocumentContextParameter/ram:ID").
			Optional().Describe("BT-23 business process type")),
		defaulted(text("guideline", "rsm:ExchangedDocumentContext/ram:GuidelineSpecifiedDocumentContextParameter/ram:ID").
			Optional().Describe("BT-24 specification identifier")),
		schema.Leaf("number", "rsm:ExchangedDocument/ram:ID", coerce.Identifier).Describe("BT-1 invoice number"),
	)
	s.addIf(c.atLeast(levelExtended),
		text("name", "rsm:ExchangedDocument/ram:Name").Optional(),
	)
	s.add(
		schema.Leaf("typeCode", "rsm:ExchangedDocument/ram:TypeCode", documentTypes).Describe("BT-3 invoice type code"),
		date("issueDate", "rsm:ExchangedDocument/ram:IssueDateTime").Describe("BT-2 invoice issue date"),
	)
	s.addIf(c.atLeast(levelExtended),
		schema.Leaf("copyIndicator", "rsm:ExchangedDocument/ram:CopyIndicator", coerce.Indicator).Optional(),
		text("languageId", "rsm:ExchangedDocument/ram:LanguageID").Optional(),
	)
	s.addIf(c.atLeast(levelBasicWL),
		schema.Object("includedNote", "rsm:ExchangedDocument/ram:IncludedNote",
			text("content", "ram:Content").Describe("BT-22 invoice note"),
			schema.Leaf("subjectCode", "ram:SubjectCode", subjectCodes).Optional().Describe("BT-21 invoice note subject code"),
		).Repeated(0).Optional().Describe("BG-1 invoice note"),
	)
	s.add(transaction(c))

	return schema.Object("", "", s...)
}
