package main

import "testing"

func TestDefaultFixturesParse(t *testing.T) {
	fixtures, err := loadFixtures("")
	if err != nil {
		t.Fatalf("load default fixtures failed: %v", err)
	}
	if len(fixtures.Merchants) == 0 || len(fixtures.Customers) == 0 {
		t.Fatalf("default fixtures should carry merchants and customers")
	}
	for _, merchant := range fixtures.Merchants {
		for _, offer := range merchant.Offers {
			if offer.TotalPrice == "" || offer.PointsPercentage <= 0 {
				t.Fatalf("offer %q missing price or percentage", offer.Title)
			}
		}
	}
}

func TestParseFixturesRequiresPassword(t *testing.T) {
	if _, err := parseFixtures([]byte("merchants: []\n")); err == nil {
		t.Fatalf("fixtures without password should fail")
	}
}

func TestParseFixturesRequiresStoreName(t *testing.T) {
	data := []byte("password: x\nmerchants:\n  - email: a@b.com\n")
	if _, err := parseFixtures(data); err == nil {
		t.Fatalf("merchant without store_name should fail")
	}
}
