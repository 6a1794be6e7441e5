package utils

import "testing"

func TestFormatBirr(t *testing.T) {
	cases := map[int64]string{
		0:       "ETB 0",
		300:     "ETB 300",
		12500:   "ETB 12,500",
		-1500:   "ETB -1,500",
		1234567: "ETB 1,234,567",
	}
	for in, want := range cases {
		if got := FormatBirr(in); got != want {
			t.Fatalf("FormatBirr(%d) = %q, want %q", in, got, want)
		}
	}
	if got := FormatBirrFloat(2500.5); got != "ETB 2,500.50" {
		t.Fatalf("FormatBirrFloat = %q", got)
	}
	if got := FormatBirrFloat(-100); got != "ETB -100" {
		t.Fatalf("FormatBirrFloat negative = %q", got)
	}
}

func TestStripPhone(t *testing.T) {
	if got := StripPhone("+251 91-122 3344"); got != "+251911223344" {
		t.Fatalf("StripPhone = %q", got)
	}
}

func TestAddClockWrapsMidnight(t *testing.T) {
	if got := AddClock("22:00", 3.5); got != "01:30" {
		t.Fatalf("AddClock = %q, want 01:30", got)
	}
	if got := AddClock("08:00", 4.5); got != "12:30" {
		t.Fatalf("AddClock = %q, want 12:30", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(5.5); got != "5h 30m" {
		t.Fatalf("FormatDuration = %q", got)
	}
}

func TestSplitSeatList(t *testing.T) {
	got := SplitSeatList(" a3, a4;\nB1 ,")
	if len(got) != 3 || got[0] != "A3" || got[1] != "A4" || got[2] != "B1" {
		t.Fatalf("SplitSeatList = %v", got)
	}
}

func TestIsEthiopianPhone(t *testing.T) {
	valid := []string{"0911223344", "+251911223344", "911223344", "0911 22-33 44"}
	for _, p := range valid {
		if !IsEthiopianPhone(p) {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	invalid := []string{"", "123", "0011223344", "+25191122334", "09112233445"}
	for _, p := range invalid {
		if IsEthiopianPhone(p) {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func TestIsEmail(t *testing.T) {
	if !IsEmail("abebe@selambus.com") {
		t.Fatalf("expected valid email")
	}
	if IsEmail("abebe@selambus") || IsEmail("a b@x.com") {
		t.Fatalf("expected invalid email")
	}
}

func TestPhoneKey(t *testing.T) {
	for _, p := range []string{"0911223344", "+251 911 223 344", "911223344"} {
		if got := PhoneKey(p); got != "911223344" {
			t.Fatalf("PhoneKey(%q) = %q", p, got)
		}
	}
	if got := PhoneKey("12-3"); got != "123" {
		t.Fatalf("PhoneKey(12-3) = %q", got)
	}
}
