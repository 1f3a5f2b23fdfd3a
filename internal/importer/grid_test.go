package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDelimitedText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Grid
	}{
		{
			name: "empty",
			text: "  \n\n ",
			want: Grid{},
		},
		{
			name: "tab separated",
			text: "Date\tCoupons\tCard Cash\n2025-03-10\tCARD CASH\t250\n",
			want: Grid{{"Date", "Coupons", "Card Cash"}, {"2025-03-10", "CARD CASH", "250"}},
		},
		{
			name: "tab separated keeps ragged rows",
			text: "a\tb\tc\r\n1\t2\r\n",
			want: Grid{{"a", "b", "c"}, {"1", "2"}},
		},
		{
			name: "comma with quotes",
			text: "Notes,Amount\n\"hello, world\",\"1,200\"\n\"say \"\"hi\"\"\",5",
			want: Grid{{"Notes", "Amount"}, {"hello, world", "1,200"}, {`say "hi"`, "5"}},
		},
		{
			name: "blank rows dropped and cells trimmed",
			text: "a, b\n , \n 1 , 2 \n\n",
			want: Grid{{"a", "b"}, {"1", "2"}},
		},
		{
			name: "tab separated strips quotes",
			text: "Date\tCoupons\tNotes\n2025-03-10\t\"Rs 10\"\t\"say \"\"hi\"\"\"",
			want: Grid{{"Date", "Coupons", "Notes"}, {"2025-03-10", "Rs 10", `say "hi"`}},
		},
		{
			name: "comma with space before quote",
			text: "Date, Coupons, Issued_Count\n2025-03-10, \"Rs 10\", 5",
			want: Grid{{"Date", "Coupons", "Issued_Count"}, {"2025-03-10", "Rs 10", "5"}},
		},
		{
			name: "byte order mark",
			text: "\ufeffDate,Type\n2025-01-01,ISSUE",
			want: Grid{{"Date", "Type"}, {"2025-01-01", "ISSUE"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDelimitedText(tt.text))
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "issuedstartserialnumber", normalizeHeader("Issued_Start serial number"))
	assert.Equal(t, "totalcouponsales", normalizeHeader("Total Coupon Sales (₹)"))
	assert.Equal(t, "cardphonepay", normalizeHeader(" Card-Phonepay "))
}
