package marketcheck

import (
	"encoding/json"
	"testing"
)

func TestNormalizeHeadingFallbacks(t *testing.T) {
	year := 2023
	tests := []struct {
		name string
		raw  rawRecord
		want string
	}{
		{
			name: "source heading wins",
			raw: func() rawRecord {
				var r rawRecord
				r.Heading = "2023 Honda Civic Sport Touring"
				r.Build.Year = &year
				r.Build.Make = "Honda"
				r.Build.Model = "Civic"
				return r
			}(),
			want: "2023 Honda Civic Sport Touring",
		},
		{
			name: "synthesized from build",
			raw: func() rawRecord {
				var r rawRecord
				r.Build.Year = &year
				r.Build.Make = "Honda"
				r.Build.Model = "Civic"
				return r
			}(),
			want: "2023 Honda Civic",
		},
		{
			name: "partial build",
			raw: func() rawRecord {
				var r rawRecord
				r.Build.Make = "Honda"
				return r
			}(),
			want: "Honda",
		},
		{
			name: "nothing known",
			raw:  rawRecord{},
			want: "Vehicle",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(&tt.raw)

			if got.Heading != tt.want {
				t.Errorf("heading = %q, want %q", got.Heading, tt.want)
			}
		})
	}
}

func TestNormalizeTopLevelSpecFillsBuildGaps(t *testing.T) {
	year := 2021
	var r rawRecord
	r.ID = "mc-1"
	r.Year = &year
	r.Make = "Subaru"
	r.Model = "Outback"

	got := normalize(&r)

	if got.Build.Year == nil || *got.Build.Year != 2021 {
		t.Errorf("build year = %v, want 2021 from top-level field", got.Build.Year)
	}
	if got.Build.Make != "Subaru" || got.Build.Model != "Outback" {
		t.Errorf("build make/model = %q/%q, want Subaru/Outback", got.Build.Make, got.Build.Model)
	}
}

func TestNormalizeNumericDealerID(t *testing.T) {
	var r rawRecord
	if err := json.Unmarshal([]byte(`{"id":"mc-2","dealer":{"id":1048313,"name":"City Motors"}}`), &r); err != nil {
		t.Fatal(err)
	}

	got := normalize(&r)

	if got.Dealer.ID != "1048313" {
		t.Errorf("dealer id = %q, want the JSON number as a string", got.Dealer.ID)
	}
	if got.Source != "marketcheck" {
		t.Errorf("source = %q, want marketcheck", got.Source)
	}
}
