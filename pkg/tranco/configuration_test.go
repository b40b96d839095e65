package tranco

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const fullConfigurationJSON = `{
  "providers": ["crux", "farsight", "majestic", "radar", "umbrella"],
  "startDate": "2025-03-08",
  "endDate": "2025-04-06",
  "combinationMethod": "dowdall",
  "listPrefix": "full",
  "filterPLD": "on",
  "inclusionDays": "on",
  "inclusionDaysValue": 15,
  "inclusionLists": "off",
  "filterTLD": "include",
  "filterTLDValue": ["com", "org"],
  "filterOrganization": "off",
  "filterSubdomain": "on",
  "filterSubdomainValue": ["www"],
  "filterSafeBrowsing": "on",
  "filterCRUX": "on",
  "filterCRUXMonth": "202503",
  "filterCRUXType": "country",
  "filterCRUXValue": ["be"]
}`

func TestConfigurationUnmarshalFull(t *testing.T) {
	var cfg Configuration
	if err := json.Unmarshal([]byte(fullConfigurationJSON), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	days := uint32(15)
	tld := FilterTLDInclude
	month, _ := SpecificCruxMonth("202503")
	cruxType := CruxCountry
	want := Configuration{
		Providers:            []Provider{ProviderCrux, ProviderFarsight, ProviderMajestic, ProviderRadar, ProviderUmbrella},
		StartDate:            "2025-03-08",
		EndDate:              "2025-04-06",
		CombinationMethod:    CombinationDowdall,
		ListPrefix:           FullListPrefix(),
		FilterPLD:            ToggleOn,
		InclusionDays:        ToggleOn,
		InclusionDaysValue:   &days,
		InclusionLists:       ToggleOff,
		FilterTLD:            &tld,
		FilterTLDValue:       []string{"com", "org"},
		FilterOrganization:   ToggleOff,
		FilterSubdomain:      ToggleOn,
		FilterSubdomainValue: []string{"www"},
		FilterSafeBrowsing:   ToggleOn,
		FilterCRUX:           ToggleOn,
		FilterCRUXMonth:      &month,
		FilterCRUXType:       &cruxType,
		FilterCRUXValue:      []string{"be"},
	}
	if diff := cmp.Diff(want, cfg, cmp.AllowUnexported(ListPrefix{}, CruxMonth{})); diff != "" {
		t.Fatalf("configuration mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigurationDefaultsTogglesOff(t *testing.T) {
	raw := `{"providers":["alexa"],"startDate":"2019-01-01","endDate":"2019-01-30","combinationMethod":"borda","listPrefix":1000000}`

	var cfg Configuration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, tog := range cfg.toggles() {
		if *tog != ToggleOff {
			t.Errorf("toggle %d = %q want off", i, *tog)
		}
	}
	if cfg.InclusionDaysValue != nil || cfg.InclusionListsValue != nil {
		t.Errorf("expected inclusion values to be nil")
	}
	if cfg.FilterTLD != nil || cfg.FilterTLDValue != nil {
		t.Errorf("expected tld filter to be unset")
	}
	if cfg.FilterSubdomainValue != nil || cfg.FilterCRUXMonth != nil || cfg.FilterCRUXType != nil || cfg.FilterCRUXValue != nil {
		t.Errorf("expected filter values to be nil")
	}
	if n, ok := cfg.ListPrefix.Length(); !ok || n != 1000000 {
		t.Errorf("ListPrefix = %v", cfg.ListPrefix)
	}
}

func TestConfigurationNullToggleDefaultsOff(t *testing.T) {
	raw := `{"combinationMethod":"dowdall","listPrefix":"full","filterCRUX":null}`
	var cfg Configuration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.FilterCRUX != ToggleOff {
		t.Fatalf("FilterCRUX = %q", cfg.FilterCRUX)
	}
}

func TestConfigurationRejectsMalformedFields(t *testing.T) {
	cases := map[string]string{
		"missing list prefix":  `{"combinationMethod":"dowdall"}`,
		"missing combination":  `{"listPrefix":"full"}`,
		"bad toggle":           `{"combinationMethod":"dowdall","listPrefix":"full","filterPLD":"maybe"}`,
		"uppercase toggle":     `{"combinationMethod":"dowdall","listPrefix":"full","filterPLD":"ON"}`,
		"unknown provider":     `{"combinationMethod":"dowdall","listPrefix":"full","providers":["bing"]}`,
		"unknown combination":  `{"combinationMethod":"average","listPrefix":"full"}`,
		"bad list prefix":      `{"combinationMethod":"dowdall","listPrefix":"abc"}`,
		"bad crux month":       `{"combinationMethod":"dowdall","listPrefix":"full","filterCRUXMonth":"latest2"}`,
		"unknown crux type":    `{"combinationMethod":"dowdall","listPrefix":"full","filterCRUXType":"planet"}`,
		"unknown tld mode":     `{"combinationMethod":"dowdall","listPrefix":"full","filterTLD":"exclude"}`,
		"numeric toggle value": `{"combinationMethod":"dowdall","listPrefix":"full","filterPLD":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var cfg Configuration
			if err := json.Unmarshal([]byte(raw), &cfg); err == nil {
				t.Fatalf("expected error for %s", raw)
			}
		})
	}
}

func TestConfigurationValidateFlagsOrphanValues(t *testing.T) {
	days := uint32(10)
	month := LatestCruxMonth()
	cfg := Configuration{
		CombinationMethod:    CombinationDowdall,
		ListPrefix:           FullListPrefix(),
		InclusionDays:        ToggleOff,
		InclusionDaysValue:   &days,
		FilterSubdomain:      ToggleOff,
		FilterSubdomainValue: []string{"www"},
		FilterCRUX:           ToggleOff,
		FilterCRUXMonth:      &month,
		FilterTLDValue:       []string{"com"},
	}

	err := cfg.Validate()
	if !errors.Is(err, ErrValueWithoutToggle) {
		t.Fatalf("expected ErrValueWithoutToggle, got %v", err)
	}
	for _, field := range []string{"inclusionDaysValue", "filterSubdomainValue", "filterCRUXMonth", "filterTLDValue"} {
		if !containsField(err, field) {
			t.Errorf("expected %s to be reported in %v", field, err)
		}
	}
}

func TestConfigurationMarshalRoundTrip(t *testing.T) {
	var cfg Configuration
	if err := json.Unmarshal([]byte(fullConfigurationJSON), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Configuration
	if err := json.Unmarshal(raw, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	if diff := cmp.Diff(cfg, again, cmp.AllowUnexported(ListPrefix{}, CruxMonth{})); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func containsField(err error, field string) bool {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return false
	}
	for _, e := range joined.Unwrap() {
		if strings.HasPrefix(e.Error(), field+":") {
			return true
		}
	}
	return false
}
