package importer

import (
	"strings"
	"unicode"
)

type field int

const (
	fCoupons field = iota
	fType
	fDate
	fNotes
	fOpening
	fLabour
	fMaterial
	fCostAny
	fCardCash
	fPhonePe
	fPaytm
	fFaceValue
	fIssuedCount
	fWithheldCount
	fTotalAmount
	fIssuedStart
	fIssuedEnd
	fWithheldStart
	fWithheldEnd
)

// synonyms maps each field to the normalised header keys that may carry it,
// in lookup order. The first key with a non-empty cell wins.
var synonyms = map[field][]string{
	fCoupons:       {"coupons", "coupon", "coupontype"},
	fType:          {"type", "entrytype"},
	fDate:          {"date", "time"},
	fNotes:         {"notes", "comment", "description"},
	fOpening:       {"openingbalance", "opening"},
	fLabour:        {"labourcost", "labour"},
	fMaterial:      {"materialcost", "material", "milkcost", "milk"},
	fCostAny:       {"labourcost", "labour", "materialcost", "material", "milkcost", "milk"},
	fCardCash:      {"cardcash"},
	fPhonePe:       {"cardphonepay", "cardphonepe"},
	fPaytm:         {"couponpaytm", "paytm"},
	fFaceValue:     {"facevalue"},
	fIssuedCount:   {"issuedcount", "issued", "qty", "quantity"},
	fWithheldCount: {"withheldcount", "withheld", "qty", "quantity"},
	fTotalAmount:   {"totalamount", "amount", "total"},
	fIssuedStart:   {"issuedstartserialnumber", "issuedstart", "start"},
	fIssuedEnd:     {"issuedendserialnumber", "issuedend", "end"},
	fWithheldStart: {"withheldstartserialnumber", "withheldstart"},
	fWithheldEnd:   {"withheldendserialnumber", "withheldend"},
}

// normalizeHeader lowercases h and strips everything but ASCII letters and digits.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// headerIndex resolves normalised header keys to column positions.
type headerIndex map[string]int

func newHeaderIndex(headers []string) headerIndex {
	idx := make(headerIndex, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, dup := idx[key]; !dup && key != "" {
			idx[key] = i
		}
	}
	return idx
}

// lookup returns the first non-empty cell among f's synonyms.
func (h headerIndex) lookup(row []string, f field) string {
	for _, key := range synonyms[f] {
		i, ok := h[key]
		if !ok || i >= len(row) {
			continue
		}
		if row[i] != "" {
			return row[i]
		}
	}
	return ""
}
