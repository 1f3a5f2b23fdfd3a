package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestParseEntryType(t *testing.T) {
	got, err := ParseEntryType(" card_cash ")
	require.NoError(t, err)
	assert.Equal(t, CardCash, got)

	_, err = ParseEntryType("REFUND")
	assert.ErrorIs(t, err, ErrUnknownEntryType)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s)

	s, err = ParseStatus("INACTIVE")
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, s)

	_, err = ParseStatus("deleted")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestEntryIsActive(t *testing.T) {
	assert.True(t, Entry{}.IsActive())
	assert.True(t, Entry{Status: StatusActive}.IsActive())
	assert.False(t, Entry{Status: StatusInactive}.IsActive())

	e := Entry{ID: "a", Status: StatusActive}
	off := e.WithStatus(StatusInactive)
	assert.Equal(t, StatusActive, e.Status, "original must be untouched")
	assert.Equal(t, StatusInactive, off.Status)
}

func TestEntryValidate(t *testing.T) {
	day := NewDate(2025, 3, 10)

	good := []Entry{
		{Date: day, Type: Opening, Amount: d(0)},
		{Date: day, Type: Opening, Amount: d(1000)},
		{Date: day, Type: Issue, CouponType: "Rs 50", FaceValue: d(50), Quantity: d(400), Amount: d(20000), EntryMode: ModeBundle},
		{Date: day, Type: Withdraw, CouponType: "Rs 10", FaceValue: d(10), Quantity: d(11), SerialStart: 100, SerialEnd: 110, Amount: d(110), EntryMode: ModeSerial},
		{Date: day, Type: DailyCost, LabourCost: d(50)},
		{Date: day, Type: DailyCost, MaterialCost: d(30)},
		{Date: day, Type: CardCash, Amount: d(300)},
		{Date: day, Type: CardPhonePe, Amount: d(120)},
		{Date: day, Type: CouponPaytm, Amount: d(80)},
	}
	for i, e := range good {
		assert.NoError(t, e.Validate(), "case %d", i)
	}

	bad := []struct {
		entry Entry
		want  error
	}{
		{Entry{Date: day, Type: "REFUND"}, ErrUnknownEntryType},
		{Entry{Type: Opening}, ErrInvalidDate},
		{Entry{Date: day, Type: Issue, Quantity: d(0)}, ErrInvalidQuantity},
		{Entry{Date: day, Type: Issue, Quantity: d(-1)}, ErrInvalidQuantity},
		{Entry{Date: day, Type: Issue, Quantity: d(5), SerialStart: 10, SerialEnd: 5}, ErrInvalidSerialRange},
		{Entry{Date: day, Type: Issue, Quantity: d(5), SerialStart: 1, SerialEnd: 10}, ErrInvalidQuantity},
		{Entry{Date: day, Type: Issue, Quantity: d(5), LabourCost: d(1)}, ErrMixedFields},
		{Entry{Date: day, Type: DailyCost}, ErrMissingCost},
		{Entry{Date: day, Type: DailyCost, LabourCost: d(5), Amount: d(5)}, ErrMixedFields},
		{Entry{Date: day, Type: DailyCost, LabourCost: d(5), Quantity: d(1)}, ErrMixedFields},
		{Entry{Date: day, Type: CardCash}, ErrInvalidAmount},
		{Entry{Date: day, Type: CardCash, Amount: d(5), CouponType: "Rs 5"}, ErrMixedFields},
		{Entry{Date: day, Type: Opening, Amount: d(5), Status: "Deleted"}, ErrUnknownStatus},
	}
	for i, tc := range bad {
		err := tc.entry.Validate()
		assert.True(t, errors.Is(err, tc.want), "case %d: want %v, got %v", i, tc.want, err)
	}
}

func TestDateHelpers(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	wed := NewDate(2025, 3, 12)
	assert.Equal(t, "2025-03-10", wed.Monday().String())
	assert.Equal(t, "2025-03-10", NewDate(2025, 3, 10).Monday().String())
	assert.Equal(t, "2025-03-10", NewDate(2025, 3, 16).Monday().String(), "Sunday belongs to the previous Monday")
	assert.Equal(t, "2025-03", wed.MonthKey())
	assert.Equal(t, "2025-03-13", wed.AddDays(1).String())
	assert.Equal(t, "2025-03-12", DateOf(time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC)).String())

	parsed, err := ParseDate("2025-03-12")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(wed))

	_, err = ParseDate("12/03/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateJSON(t *testing.T) {
	b, err := NewDate(2024, 2, 29).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(b))

	var got Date
	require.NoError(t, got.UnmarshalJSON([]byte(`"2024-02-29"`)))
	assert.Equal(t, "2024-02-29", got.String())

	require.NoError(t, got.UnmarshalJSON([]byte(`null`)))
	assert.True(t, got.IsZero())
}
