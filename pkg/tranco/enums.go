package tranco

import "fmt"

// Provider is a ranking data source that can feed a list.
type Provider string

const (
	ProviderCrux      Provider = "crux"
	ProviderMajestic  Provider = "majestic"
	ProviderRadar     Provider = "radar"
	ProviderUmbrella  Provider = "umbrella"
	ProviderAlexa     Provider = "alexa"
	ProviderQuantcast Provider = "quantcast"
	ProviderFarsight  Provider = "farsight"
)

var knownProviders = []Provider{
	ProviderCrux, ProviderMajestic, ProviderRadar, ProviderUmbrella,
	ProviderAlexa, ProviderQuantcast, ProviderFarsight,
}

func (p *Provider) UnmarshalText(text []byte) error {
	return decodeEnum(p, "provider", text, knownProviders)
}

// CombinationMethod is the rank aggregation algorithm.
type CombinationMethod string

const (
	CombinationDowdall CombinationMethod = "dowdall"
	CombinationBorda   CombinationMethod = "borda"
)

func (m *CombinationMethod) UnmarshalText(text []byte) error {
	return decodeEnum(m, "combination method", text, []CombinationMethod{CombinationDowdall, CombinationBorda})
}

// ToggleOption is an on/off filter switch.
type ToggleOption string

const (
	ToggleOn  ToggleOption = "on"
	ToggleOff ToggleOption = "off"
)

func (t *ToggleOption) UnmarshalText(text []byte) error {
	return decodeEnum(t, "toggle", text, []ToggleOption{ToggleOn, ToggleOff})
}

// Enabled reports whether the toggle is on.
func (t ToggleOption) Enabled() bool { return t == ToggleOn }

// FilterTLDOption selects the TLD filtering mode.
type FilterTLDOption string

const (
	FilterTLDInclude FilterTLDOption = "include"
	FilterTLDFalse   FilterTLDOption = "false"
)

func (f *FilterTLDOption) UnmarshalText(text []byte) error {
	return decodeEnum(f, "tld filter", text, []FilterTLDOption{FilterTLDInclude, FilterTLDFalse})
}

// CruxType is the scope of the selected CrUX dataset.
type CruxType string

const (
	CruxGlobal    CruxType = "global"
	CruxCountry   CruxType = "country"
	CruxRegion    CruxType = "region"
	CruxSubregion CruxType = "subregion"
)

func (c *CruxType) UnmarshalText(text []byte) error {
	return decodeEnum(c, "crux type", text, []CruxType{CruxGlobal, CruxCountry, CruxRegion, CruxSubregion})
}

func decodeEnum[T ~string](dst *T, kind string, text []byte, known []T) error {
	raw := string(text)
	for _, k := range known {
		if string(k) == raw {
			*dst = k
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", kind, raw)
}
