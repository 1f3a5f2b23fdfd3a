package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Issue       EntryType = "ISSUE"
	Withdraw    EntryType = "WITHDRAW"
	Opening     EntryType = "OPENING"
	DailyCost   EntryType = "DAILY_COST"
	CardCash    EntryType = "CARD_CASH"
	CardPhonePe EntryType = "CARD_PHONEPE"
	CouponPaytm EntryType = "COUPON_PAYTM"
)

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

const (
	ModeSerial EntryMode = "SERIAL"
	ModeBundle EntryMode = "BUNDLE"
)

type (
	EntryType string
	Status    string
	EntryMode string

	// Entry is the atomic unit of financial activity. Optional fields use
	// their zero value to mean "not set".
	Entry struct {
		ID           string          `json:"id"`
		Date         Date            `json:"date"`
		Type         EntryType       `json:"type"`
		Amount       decimal.Decimal `json:"amount"`
		CouponType   string          `json:"couponType,omitempty"`
		FaceValue    decimal.Decimal `json:"faceValue"`
		Quantity     decimal.Decimal `json:"quantity"`
		SerialStart  int64           `json:"serialStart,omitempty"`
		SerialEnd    int64           `json:"serialEnd,omitempty"`
		LabourCost   decimal.Decimal `json:"labourCost"`
		MaterialCost decimal.Decimal `json:"materialCost"`
		EntryMode    EntryMode       `json:"entryMode,omitempty"`
		Notes        string          `json:"notes,omitempty"`
		Timestamp    time.Time       `json:"timestamp"`
		Status       Status          `json:"status"`
	}
)

var (
	ErrUnknownEntryType   = errors.New("unknown entry type")
	ErrUnknownStatus      = errors.New("unknown status")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidSerialRange = errors.New("invalid serial range")
	ErrInvalidBooklets    = errors.New("invalid booklet count")
	ErrMissingCost        = errors.New("labour or material cost required")
	ErrMixedFields        = errors.New("entry mixes fields of another type")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrTypeChange         = errors.New("entry type cannot change")
	ErrUnknownCoupon      = errors.New("unknown coupon type")
)

var entryTypes = []EntryType{Issue, Withdraw, Opening, DailyCost, CardCash, CardPhonePe, CouponPaytm}

func (t EntryType) Valid() bool {
	for _, v := range entryTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsCoupon reports whether the type carries coupon fields (ISSUE/WITHDRAW).
func (t EntryType) IsCoupon() bool {
	return t == Issue || t == Withdraw
}

func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntryType, s)
	}
	return t, nil
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// IsActive treats a missing status as Active.
func (e Entry) IsActive() bool {
	return e.Status != StatusInactive
}

// WithStatus returns a copy of the entry carrying the given status.
func (e Entry) WithStatus(s Status) Entry {
	e.Status = s
	return e
}

// Validate checks the shape and value invariants of an entry created by hand.
// Imported entries are not required to pass it.
func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEntryType, e.Type)
	}
	if e.Status != "" && e.Status != StatusActive && e.Status != StatusInactive {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, e.Status)
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.validateShape(); err != nil {
		return err
	}

	switch e.Type {
	case Issue, Withdraw:
		if e.Quantity.IsNegative() {
			return ErrInvalidQuantity
		}
		if e.SerialStart != 0 || e.SerialEnd != 0 {
			qty, err := QuantityFromSerials(e.SerialStart, e.SerialEnd)
			if err != nil {
				return err
			}
			if !e.Quantity.Equal(decimal.NewFromInt(qty)) {
				return fmt.Errorf("%w: quantity %s does not match serial range %d-%d",
					ErrInvalidQuantity, e.Quantity, e.SerialStart, e.SerialEnd)
			}
		}
		if !e.Quantity.IsPositive() {
			return ErrInvalidQuantity
		}
	case DailyCost:
		if e.LabourCost.IsNegative() || e.MaterialCost.IsNegative() {
			return ErrInvalidAmount
		}
		if e.LabourCost.IsZero() && e.MaterialCost.IsZero() {
			return ErrMissingCost
		}
	case CardCash, CardPhonePe, CouponPaytm:
		if e.Amount.IsZero() {
			return ErrInvalidAmount
		}
	case Opening:
		// any amount, including zero, is a valid opening float
	}
	return nil
}

// validateShape rejects entries that carry fields belonging to other types.
func (e Entry) validateShape() error {
	hasCoupon := e.CouponType != "" || !e.FaceValue.IsZero() || !e.Quantity.IsZero() ||
		e.SerialStart != 0 || e.SerialEnd != 0 || e.EntryMode != ""
	hasCost := !e.LabourCost.IsZero() || !e.MaterialCost.IsZero()

	switch {
	case e.Type.IsCoupon():
		if hasCost {
			return fmt.Errorf("%w: cost fields on %s", ErrMixedFields, e.Type)
		}
	case e.Type == DailyCost:
		if hasCoupon {
			return fmt.Errorf("%w: coupon fields on %s", ErrMixedFields, e.Type)
		}
		if !e.Amount.IsZero() {
			return fmt.Errorf("%w: amount must be 0 on %s", ErrMixedFields, e.Type)
		}
	default:
		if hasCoupon || hasCost {
			return fmt.Errorf("%w: coupon or cost fields on %s", ErrMixedFields, e.Type)
		}
	}
	return nil
}
