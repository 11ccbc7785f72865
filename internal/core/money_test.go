package core

import "testing"

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"2000", 200000, true},
		{"-500", -50000, true},
		{"-500.25", -50025, true},
		{"+3", 300, true},
		{"0", 0, true},
		{".5", 50, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12a", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCents(tc.in)
			if tc.ok && (err != nil || got != tc.want) {
				t.Fatalf("ParseCents(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
			}
			if !tc.ok && err == nil {
				t.Fatalf("ParseCents(%q) expected error", tc.in)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{200000, "2000"},
		{-50000, "-500"},
		{-50025, "-500.25"},
		{50, "0.5"},
		{-5, "-0.05"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.in); got != tc.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, -1, 99, 100, -120000, 200000, 123456789} {
		got, err := ParseCents(FormatCents(cents))
		if err != nil || got != cents {
			t.Fatalf("round trip %d -> %q -> %d, %v", cents, FormatCents(cents), got, err)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := Money{Cents: -50025}.MarshalJSON()
	if err != nil || string(b) != "-50025" {
		t.Fatalf("MarshalJSON = %s, %v", b, err)
	}
	var m Money
	if err := m.UnmarshalJSON([]byte("1234")); err != nil || m.Cents != 1234 {
		t.Fatalf("UnmarshalJSON = %+v, %v", m, err)
	}
	if err := m.UnmarshalJSON([]byte(`"nope"`)); err == nil {
		t.Fatalf("expected error for non-numeric JSON")
	}
}
