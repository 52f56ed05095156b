package arithmetic

import "invaudit/internal/domain"

// TaxType enumerates the four tax representations a line item may carry:
// the single general rate and the three jurisdiction-specific split rates.
// Each variant knows its own rate and amount fields, so a test over a tax
// type can never reference a column that does not exist.
type TaxType int

const (
	TaxGST TaxType = iota
	TaxSGST
	TaxCGST
	TaxIGST
)

func (t TaxType) String() string {
	switch t {
	case TaxGST:
		return "GST"
	case TaxSGST:
		return "SGST"
	case TaxCGST:
		return "CGST"
	case TaxIGST:
		return "IGST"
	}
	return "UNKNOWN"
}

// Rate returns the line item's rate field for this tax type.
func (t TaxType) Rate(item *domain.LineItem) *float64 {
	switch t {
	case TaxGST:
		return item.GSTRate
	case TaxSGST:
		return item.SGSTRate
	case TaxCGST:
		return item.CGSTRate
	case TaxIGST:
		return item.IGSTRate
	}
	return nil
}

// Amount returns the line item's amount field for this tax type.
func (t TaxType) Amount(item *domain.LineItem) *float64 {
	switch t {
	case TaxGST:
		return item.GSTAmount
	case TaxSGST:
		return item.SGSTAmount
	case TaxCGST:
		return item.CGSTAmount
	case TaxIGST:
		return item.IGSTAmount
	}
	return nil
}

// RateField returns the stored column name for this tax type's rate.
func (t TaxType) RateField() string {
	switch t {
	case TaxGST:
		return "gst_rate"
	case TaxSGST:
		return "sgst_rate"
	case TaxCGST:
		return "cgst_rate"
	case TaxIGST:
		return "igst_rate"
	}
	return ""
}

// AmountField returns the stored column name for this tax type's amount.
func (t TaxType) AmountField() string {
	switch t {
	case TaxGST:
		return "gst_amount"
	case TaxSGST:
		return "sgst_amount"
	case TaxCGST:
		return "cgst_amount"
	case TaxIGST:
		return "igst_amount"
	}
	return ""
}
