package discovery

import (
	"testing"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(DefaultVendorTable())

	tests := []struct {
		name string
		mac  string
		want string
	}{
		{"hikvision lowercase", "28:57:be:11:22:33", "Hikvision"},
		{"hikvision uppercase", "28:57:BE:11:22:33", "Hikvision"},
		{"dahua dash separated", "3C-EF-8C-01-02-03", "Dahua"},
		{"raspberry pi", "b8:27:eb:00:00:01", "Raspberry Pi"},
		{"unknown prefix", "ff:ff:ff:11:22:33", GenericManufacturer},
		{"zero sentinel", ZeroHardwareAddress, GenericManufacturer},
		{"empty", "", GenericManufacturer},
		{"garbage", "not-a-mac", GenericManufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.mac)
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.mac, got, tt.want)
			}
			if got == "" {
				t.Errorf("Classify(%q) returned empty string", tt.mac)
			}
		})
	}
}

func TestNewClassifier_NormalisesKeys(t *testing.T) {
	classifier := NewClassifier(VendorTable{
		"AA-BB-CC": "Acme",
		"bad":      "Ignored",
		"dd:ee:ff": "",
	})

	if got := classifier.Classify("aa:bb:cc:00:00:01"); got != "Acme" {
		t.Errorf("Classify() = %q, want Acme", got)
	}
	if classifier.Len() != 1 {
		t.Errorf("Len() = %d, want 1", classifier.Len())
	}
}

func TestDefaultVendorTable_IsCopy(t *testing.T) {
	table := DefaultVendorTable()
	table["28:57:be"] = "Tampered"

	if got := NewClassifier(DefaultVendorTable()).Classify("28:57:be:00:00:00"); got != "Hikvision" {
		t.Errorf("DefaultVendorTable() shares state with callers: got %q", got)
	}
}

func TestIsGenericVendor(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"", true},
		{"Unknown", true},
		{"Generic", true},
		{"Hangzhou Hikvision Digital Technology", false},
	}

	for _, tt := range tests {
		if got := isGenericVendor(tt.name); got != tt.want {
			t.Errorf("isGenericVendor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
