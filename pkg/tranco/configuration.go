package tranco

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Configuration is the parameter set a list was generated from.
//
// The *Value fields only carry meaning while their toggle (or TLD filter) is
// enabled. Decoding does not enforce that; call Validate when it matters.
type Configuration struct {
	Providers         []Provider        `json:"providers"`
	StartDate         string            `json:"startDate"`
	EndDate           string            `json:"endDate"`
	CombinationMethod CombinationMethod `json:"combinationMethod"`
	ListPrefix        ListPrefix        `json:"listPrefix"`

	FilterPLD ToggleOption `json:"filterPLD"`

	InclusionDays       ToggleOption `json:"inclusionDays"`
	InclusionDaysValue  *uint32      `json:"inclusionDaysValue,omitempty"`
	InclusionLists      ToggleOption `json:"inclusionLists"`
	InclusionListsValue *uint32      `json:"inclusionListsValue,omitempty"`

	FilterTLD      *FilterTLDOption `json:"filterTLD,omitempty"`
	FilterTLDValue []string         `json:"filterTLDValue,omitempty"`

	FilterOrganization   ToggleOption `json:"filterOrganization"`
	FilterSubdomain      ToggleOption `json:"filterSubdomain"`
	FilterSubdomainValue []string     `json:"filterSubdomainValue,omitempty"`
	FilterSafeBrowsing   ToggleOption `json:"filterSafeBrowsing"`

	FilterCRUX      ToggleOption `json:"filterCRUX"`
	FilterCRUXMonth *CruxMonth   `json:"filterCRUXMonth,omitempty"`
	FilterCRUXType  *CruxType    `json:"filterCRUXType,omitempty"`
	FilterCRUXValue []string     `json:"filterCRUXValue,omitempty"`
}

type configurationFields Configuration

// UnmarshalJSON decodes the wire form, rejects payloads without a combination
// method or list prefix, and defaults absent toggles to off.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var decoded Configuration
	aux := struct {
		*configurationFields
		CombinationMethod *CombinationMethod `json:"combinationMethod"`
		ListPrefix        *ListPrefix        `json:"listPrefix"`
	}{configurationFields: (*configurationFields)(&decoded)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CombinationMethod == nil {
		return errors.New("configuration: missing field combinationMethod")
	}
	if aux.ListPrefix == nil {
		return errors.New("configuration: missing field listPrefix")
	}
	decoded.CombinationMethod = *aux.CombinationMethod
	decoded.ListPrefix = *aux.ListPrefix
	decoded.applyDefaults()

	*c = decoded
	return nil
}

func (c *Configuration) applyDefaults() {
	for _, t := range c.toggles() {
		if *t == "" {
			*t = ToggleOff
		}
	}
}

func (c *Configuration) toggles() []*ToggleOption {
	return []*ToggleOption{
		&c.FilterPLD,
		&c.InclusionDays,
		&c.InclusionLists,
		&c.FilterOrganization,
		&c.FilterSubdomain,
		&c.FilterSafeBrowsing,
		&c.FilterCRUX,
	}
}

// ErrValueWithoutToggle is reported by Validate for a value whose filter is off.
var ErrValueWithoutToggle = errors.New("value set while its filter is disabled")

// Validate reports every associated value that is set while the filter it
// parameterizes is disabled.
func (c Configuration) Validate() error {
	var errs []error
	check := func(field string, enabled, set bool) {
		if set && !enabled {
			errs = append(errs, fmt.Errorf("%s: %w", field, ErrValueWithoutToggle))
		}
	}

	check("inclusionDaysValue", c.InclusionDays.Enabled(), c.InclusionDaysValue != nil)
	check("inclusionListsValue", c.InclusionLists.Enabled(), c.InclusionListsValue != nil)
	check("filterTLDValue", c.FilterTLD != nil && *c.FilterTLD == FilterTLDInclude, len(c.FilterTLDValue) > 0)
	check("filterSubdomainValue", c.FilterSubdomain.Enabled(), len(c.FilterSubdomainValue) > 0)
	check("filterCRUXMonth", c.FilterCRUX.Enabled(), c.FilterCRUXMonth != nil)
	check("filterCRUXType", c.FilterCRUX.Enabled(), c.FilterCRUXType != nil)
	check("filterCRUXValue", c.FilterCRUX.Enabled(), len(c.FilterCRUXValue) > 0)

	return errors.Join(errs...)
}
