// Package sample provides example invoice inputs per profile. They back the
// "example" CLI command and serve as fixtures across the test suites.
package sample

import (
	"github.com/rezonia/zugferd/internal/profile"
)

// Document is raw invoice input as decoded from JSON
type Document = map[string]interface{}

// For returns a fresh example document valid for the given profile
func For(profileID string) (Document, bool) {
	switch profileID {
	case profile.Minimum:
		return Minimum(), true
	case profile.BasicWL:
		return BasicWL(), true
	case profile.Basic, profile.EN16931, profile.Extended:
		return Comfort(), true
	case profile.XRechnung:
		return XRechnung(), true
	}
	return nil, false
}

// Minimum is the smallest invoice accepted by the MINIMUM profile
func Minimum() Document {
	return Document{
		"number":    "471102",
		"issueDate": "2024-11-15",
		"typeCode":  "380",
		"transaction": Document{
			"tradeAgreement": Document{
				"seller": Document{
					"name":          "Lieferant GmbH",
					"postalAddress": Document{"countryCode": "DE"},
					"taxRegistration": Document{
						"vatIdentifier": "DE123456789",
					},
				},
				"buyer": Document{
					"name": "Kunden AG Frankreich",
				},
			},
			"tradeSettlement": Document{
				"currencyCode": "EUR",
				"monetarySummation": Document{
					"taxBasisTotalAmount": "198.00",
					"taxTotal": Document{
						"currencyCode": "EUR",
						"amount":       "37.62",
					},
					"grandTotalAmount": "235.62",
					"duePayableAmount": "235.62",
				},
			},
		},
	}
}

// BasicWL is Minimum with header totals and a VAT breakdown
func BasicWL() Document {
	doc := Minimum()
	doc["includedNote"] = []interface{}{
		Document{"content": "Rechnung gemäß Bestellung vom 01.11.2024."},
		Document{"content": "Lieferant GmbH, Lieferantenstraße 20, 80333 München", "subjectCode": "REG"},
	}

	tx := doc["transaction"].(Document)
	agreement := tx["tradeAgreement"].(Document)
	seller := agreement["seller"].(Document)
	seller["postalAddress"] = Document{
		"postcode":    "80333",
		"lineOne":     "Lieferantenstraße 20",
		"city":        "München",
		"countryCode": "DE",
	}
	seller["taxRegistration"] = Document{
		"vatIdentifier":   "DE123456789",
		"localIdentifier": "201/113/40209",
	}
	agreement["buyer"] = Document{
		"name": "Kunden AG Frankreich",
		"postalAddress": Document{
			"postcode":    "69876",
			"lineOne":     "Kundenstraße 15",
			"city":        "Frankfurt",
			"countryCode": "DE",
		},
	}

	settlement := tx["tradeSettlement"].(Document)
	settlement["tradeTax"] = []interface{}{
		Document{
			"calculatedAmount":      "37.62",
			"basisAmount":           "198.00",
			"categoryCode":          "S",
			"rateApplicablePercent": "19",
		},
	}
	settlement["paymentTerms"] = Document{"dueDate": "2024-12-15"}
	summation := settlement["monetarySummation"].(Document)
	summation["lineTotalAmount"] = "198.00"
	return doc
}

// Comfort carries the trade lines needed from BASIC upwards
func Comfort() Document {
	doc := BasicWL()
	tx := doc["transaction"].(Document)
	tx["line"] = []interface{}{
		line("1", "4012345001235", "Trennblätter A4", "9.90", "20", "198.00"),
	}
	return doc
}

// XRechnung adds the German CIUS requirements to Comfort
func XRechnung() Document {
	doc := Comfort()
	tx := doc["transaction"].(Document)
	agreement := tx["tradeAgreement"].(Document)
	agreement["buyerReference"] = "04011000-12345-34"

	seller := agreement["seller"].(Document)
	seller["contact"] = Document{
		"personName": "Max Mustermann",
		"telephone":  "+49 89 123456",
		"email":      "max@lieferant.de",
	}
	seller["electronicAddress"] = Document{"value": "rechnung@lieferant.de", "scheme": "EM"}

	buyer := agreement["buyer"].(Document)
	buyer["electronicAddress"] = Document{"value": "04011000-12345-34", "scheme": "0204"}

	settlement := tx["tradeSettlement"].(Document)
	settlement["paymentMeans"] = []interface{}{
		Document{
			"typeCode":     "58",
			"payeeAccount": Document{"iban": "DE02120300000000202051"},
		},
	}
	return doc
}

func line(id, gtin, name, price, qty, total string) Document {
	return Document{
		"identifier": id,
		"product": Document{
			"globalIdentifier": Document{"value": gtin, "scheme": "0160"},
			"name":             name,
		},
		"agreement": Document{
			"netPrice": Document{"chargeAmount": price},
		},
		"delivery": Document{
			"billedQuantity": Document{"quantity": qty, "unitCode": "H87"},
		},
		"settlement": Document{
			"tradeTax": Document{
				"categoryCode":          "S",
				"rateApplicablePercent": "19",
			},
			"lineTotalAmount": total,
		},
	}
}
