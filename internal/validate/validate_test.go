package validate

import "testing"

func TestEmail(t *testing.T) {
	if _, ok := Email(" dara@example.com "); !ok {
		t.Fatal("valid email rejected")
	}
	for _, bad := range []string{"", "dara", "dara@", "a@b"} {
		if _, ok := Email(bad); ok {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestPassword(t *testing.T) {
	if err := Password("abc12", "abc12"); err != ErrPasswordShort {
		t.Fatalf("want short, got %v", err)
	}
	if err := Password("abc123", "abc124"); err != ErrPasswordMismatch {
		t.Fatalf("want mismatch, got %v", err)
	}
	if err := Password("abc123", "abc123"); err != nil {
		t.Fatal(err)
	}
}

func TestOTP(t *testing.T) {
	for in, want := range map[string]bool{"123456": true, " 654321 ": true, "12345": false, "12a456": false, "1234567": false} {
		if _, ok := OTP(in); ok != want {
			t.Fatalf("OTP(%q)=%v want %v", in, ok, want)
		}
	}
}

func TestID(t *testing.T) {
	if n, ok := ID("42"); !ok || n != 42 {
		t.Fatalf("got %d %v", n, ok)
	}
	for _, bad := range []string{"", "0", "-3", "x1"} {
		if _, ok := ID(bad); ok {
			t.Fatalf("accepted %q", bad)
		}
	}
	if n, ok := OptionalID(""); !ok || n != 0 {
		t.Fatal("empty optional id rejected")
	}
}

func TestQtyClamps(t *testing.T) {
	if Qty("0") != 1 || Qty("abc") != 1 || Qty("99") != 50 || Qty("3") != 3 {
		t.Fatal("qty not clamped")
	}
}

func TestPhoneAndDate(t *testing.T) {
	if _, ok := Phone("+855 12 345 678"); !ok {
		t.Fatal("phone rejected")
	}
	if _, ok := Phone("call me"); ok {
		t.Fatal("text accepted as phone")
	}
	if _, ok := Date("2025-02-30"); ok {
		t.Fatal("impossible date accepted")
	}
}

func TestPriceAndPercent(t *testing.T) {
	if _, ok := Price("-1"); ok {
		t.Fatal("negative price accepted")
	}
	if p, ok := Percent(""); !ok || p != 0 {
		t.Fatal("empty percent rejected")
	}
	if _, ok := Percent("101"); ok {
		t.Fatal("percent over 100 accepted")
	}
}
