package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cashledger/internal/core"
)

// MergeMode says how an import combines with the existing ledger.
type MergeMode string

const (
	// Replace archives every active entry before adding the imported ones.
	Replace MergeMode = "REPLACE"
	// Append adds the imported entries alongside the existing ones.
	Append MergeMode = "APPEND"
)

var ErrUnknownMergeMode = errors.New("unknown merge mode")

func ParseMergeMode(s string) (MergeMode, error) {
	switch MergeMode(strings.ToUpper(strings.TrimSpace(s))) {
	case Replace, "":
		return Replace, nil
	case Append:
		return Append, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMergeMode, s)
	}
}

const (
	errEmptyGrid  = "empty grid"
	errNoDataRows = "no data rows"
)

// Result is the outcome of normalising one grid. Errors are row-level
// rejections; Warnings flag rows that were imported on a guess.
type Result struct {
	Entries  []core.Entry `json:"entries"`
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
}

// Normalizer maps loosely structured rows onto entries. The zero value is
// usable: it falls back to the default coupon catalog, the wall clock and
// random UUIDs.
type Normalizer struct {
	Coupons core.CouponCatalog
	Now     func() time.Time
	NewID   func() string
	// Strict rejects rows whose type could only be guessed.
	Strict bool
}

func NewNormalizer(strict bool) *Normalizer {
	return &Normalizer{
		Coupons: core.DefaultCoupons(),
		Now:     time.Now,
		NewID:   uuid.NewString,
		Strict:  strict,
	}
}

// GridToEntries converts every data row of grid. It never fails as a whole;
// problems are reported through Result.Errors.
func (n *Normalizer) GridToEntries(grid Grid) Result {
	res := Result{Entries: []core.Entry{}, Errors: []string{}, Warnings: []string{}}
	if len(grid) == 0 {
		res.Errors = append(res.Errors, errEmptyGrid)
		return res
	}
	if len(grid) == 1 {
		res.Errors = append(res.Errors, errNoDataRows)
		return res
	}

	idx := newHeaderIndex(grid[0])
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		if isBlank(row) {
			continue
		}

		typ, guessed := n.inferType(idx, row)
		if guessed {
			if n.Strict {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: cannot determine entry type", i+1))
				continue
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: no type markers, imported as %s", i+1, core.Issue))
		}
		res.Entries = append(res.Entries, n.buildEntry(idx, row, i, typ))
	}
	return res
}

// inferType applies the textual markers first, then sniffs numeric columns.
// guessed is true when nothing matched and ISSUE was assumed.
func (n *Normalizer) inferType(idx headerIndex, row []string) (core.EntryType, bool) {
	coupons := strings.ToUpper(idx.lookup(row, fCoupons))
	typeCol := strings.ToUpper(idx.lookup(row, fType))

	switch {
	case strings.Contains(coupons, "OPENING"):
		return core.Opening, false
	case strings.Contains(coupons, "COST"):
		return core.DailyCost, false
	case strings.Contains(coupons, "CARD CASH"):
		return core.CardCash, false
	case strings.Contains(coupons, "PHONEPAY"), strings.Contains(coupons, "PHONEPE"):
		return core.CardPhonePe, false
	case strings.Contains(coupons, "PAYTM"):
		return core.CouponPaytm, false
	case strings.Contains(typeCol, "WITHDRAW"), strings.Contains(typeCol, "WITHHELD"):
		return core.Withdraw, false
	case strings.Contains(coupons, "RS"), strings.Contains(typeCol, "ISSUE"):
		return core.Issue, false
	}
	if _, ok := n.catalog().Lookup(coupons); ok {
		return core.Issue, false
	}

	number := func(f field) decimal.Decimal { return core.ParseLooseAmount(idx.lookup(row, f)) }
	switch {
	case !number(fOpening).IsZero():
		return core.Opening, false
	case !number(fCostAny).IsZero():
		return core.DailyCost, false
	case !number(fCardCash).IsZero():
		return core.CardCash, false
	case !number(fPhonePe).IsZero():
		return core.CardPhonePe, false
	case !number(fPaytm).IsZero():
		return core.CouponPaytm, false
	}
	return core.Issue, true
}

func (n *Normalizer) buildEntry(idx headerIndex, row []string, rowIndex int, typ core.EntryType) core.Entry {
	number := func(f field) decimal.Decimal { return core.ParseLooseAmount(idx.lookup(row, f)) }

	date := n.parseDate(idx.lookup(row, fDate))
	e := core.Entry{
		ID:        n.newID(),
		Date:      date,
		Type:      typ,
		Notes:     idx.lookup(row, fNotes),
		Status:    core.StatusActive,
		Timestamp: date.Add(time.Duration(rowIndex) * time.Millisecond),
	}

	switch typ {
	case core.Opening:
		e.Amount = number(fOpening)
	case core.DailyCost:
		e.LabourCost = number(fLabour)
		e.MaterialCost = number(fMaterial)
	case core.CardCash:
		e.Amount = number(fCardCash)
	case core.CardPhonePe:
		e.Amount = number(fPhonePe)
	case core.CouponPaytm:
		e.Amount = number(fPaytm)
	case core.Issue, core.Withdraw:
		n.fillCoupon(&e, idx, row)
	}
	return e
}

func (n *Normalizer) fillCoupon(e *core.Entry, idx headerIndex, row []string) {
	number := func(f field) decimal.Decimal { return core.ParseLooseAmount(idx.lookup(row, f)) }

	e.CouponType = idx.lookup(row, fCoupons)
	e.FaceValue = number(fFaceValue)
	if e.FaceValue.IsZero() && e.CouponType != "" {
		if cfg, ok := n.catalog().Lookup(e.CouponType); ok {
			e.FaceValue = cfg.FaceValue
		}
	}

	countField, startField, endField := fIssuedCount, fIssuedStart, fIssuedEnd
	if e.Type == core.Withdraw {
		countField, startField, endField = fWithheldCount, fWithheldStart, fWithheldEnd
	}

	e.Quantity = number(countField)
	total := number(fTotalAmount)
	if e.Quantity.IsZero() && total.IsPositive() && e.FaceValue.IsPositive() {
		e.Quantity = total.Div(e.FaceValue)
	}
	if total.IsZero() && e.Quantity.IsPositive() && e.FaceValue.IsPositive() {
		e.Amount = e.Quantity.Mul(e.FaceValue)
	} else {
		e.Amount = total
	}

	if start := number(startField).IntPart(); start > 0 {
		e.SerialStart = start
	}
	if end := number(endField).IntPart(); end > 0 {
		e.SerialEnd = end
	}
	e.EntryMode = core.ModeBundle
	if e.SerialStart > 0 {
		e.EntryMode = core.ModeSerial
	}
}

// dateLayouts are tried in order. Slash dates are read month first.
var dateLayouts = []string{
	core.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon Jan 2 2006",
}

// parseDate accepts any of dateLayouts and falls back to today.
func (n *Normalizer) parseDate(s string) core.Date {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t)
		}
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return core.DateOf(now())
}

func (n *Normalizer) catalog() core.CouponCatalog {
	if n.Coupons == nil {
		return core.DefaultCoupons()
	}
	return n.Coupons
}

func (n *Normalizer) newID() string {
	if n.NewID == nil {
		return uuid.NewString()
	}
	return n.NewID()
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
