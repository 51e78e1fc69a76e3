package bot

import "testing"

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(1234.5, "$", true); got != "$1,234.50" {
		t.Fatalf("prefixed currency mismatch: %q", got)
	}
	if got := FormatCurrency(0.126, "VELO", false); got != "0.13 VELO" {
		t.Fatalf("suffixed currency mismatch: %q", got)
	}
}

func TestFormatPercentage(t *testing.T) {
	if got := FormatPercentage(0.3); got != "0.30 %" {
		t.Fatalf("percentage mismatch: %q", got)
	}
}

func TestAmountToK(t *testing.T) {
	cases := map[float64]string{
		2500:  "2.5K",
		2000:  "2K",
		12345: "12.35K",
		0:     "0K",
	}
	for in, want := range cases {
		if got := AmountToK(in); got != want {
			t.Fatalf("AmountToK(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestAmountToM(t *testing.T) {
	if got := AmountToM(1_234_567); got != "1.23M" {
		t.Fatalf("AmountToM mismatch: %q", got)
	}
	if got := AmountToM(2_500_000); got != "2.5M" {
		t.Fatalf("AmountToM mismatch: %q", got)
	}
}

func TestAppURL(t *testing.T) {
	got := AppURL("https://velodrome.finance/", "/deposit", map[string]string{
		"token0": "0xA",
		"stable": "false",
	})
	want := "https://velodrome.finance/deposit?stable=false&token0=0xA"
	if got != want {
		t.Fatalf("url mismatch: %q != %q", got, want)
	}

	if got := AppURL("https://velodrome.finance", "swap", nil); got != "https://velodrome.finance/swap" {
		t.Fatalf("bare url mismatch: %q", got)
	}
}
