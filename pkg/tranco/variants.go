package tranco

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const listPrefixFull = "full"

// ListPrefix limits aggregation to provider list prefixes: either the full
// lists or the top N entries of each. The zero value is Length(0).
type ListPrefix struct {
	full   bool
	length uint32
}

// FullListPrefix aggregates over the entire provider lists.
func FullListPrefix() ListPrefix { return ListPrefix{full: true} }

// ListPrefixLength aggregates over the top n entries of each provider list.
func ListPrefixLength(n uint32) ListPrefix { return ListPrefix{length: n} }

// IsFull reports whether the entire lists are used.
func (p ListPrefix) IsFull() bool { return p.full }

// Length returns N for a top-N prefix; ok is false for the full variant.
func (p ListPrefix) Length() (n uint32, ok bool) {
	if p.full {
		return 0, false
	}
	return p.length, true
}

func (p ListPrefix) String() string {
	if p.full {
		return listPrefixFull
	}
	return strconv.FormatUint(uint64(p.length), 10)
}

// UnmarshalJSON accepts "full", a non-negative integer, or a numeric string.
func (p *ListPrefix) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("listPrefix: expected an integer or the string %q", listPrefixFull)
	}

	if data[0] != '"' {
		var n uint32
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("listPrefix: expected an integer or the string %q: %w", listPrefixFull, err)
		}
		*p = ListPrefixLength(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("listPrefix: %w", err)
	}
	if s == listPrefixFull {
		*p = FullListPrefix()
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("listPrefix: expected an integer or the string %q, got %q", listPrefixFull, s)
	}
	*p = ListPrefixLength(uint32(n))
	return nil
}

func (p ListPrefix) MarshalJSON() ([]byte, error) {
	if p.full {
		return json.Marshal(listPrefixFull)
	}
	return json.Marshal(p.length)
}

const cruxMonthLatest = "latest"

// CruxMonth selects the CrUX month: the latest available one or a specific
// YYYYMM designator. The zero value is the latest month.
type CruxMonth struct {
	month string
}

// LatestCruxMonth selects the most recent CrUX month.
func LatestCruxMonth() CruxMonth { return CruxMonth{} }

// SpecificCruxMonth selects a YYYYMM month. Only the shape is checked.
func SpecificCruxMonth(yyyymm string) (CruxMonth, error) {
	if !isYearMonth(yyyymm) {
		return CruxMonth{}, fmt.Errorf("expected YYYYMM format or %q, got %s", cruxMonthLatest, yyyymm)
	}
	return CruxMonth{month: yyyymm}, nil
}

// IsLatest reports whether the latest available month is selected.
func (m CruxMonth) IsLatest() bool { return m.month == "" }

// Specific returns the YYYYMM designator when a specific month is selected.
func (m CruxMonth) Specific() (string, bool) {
	return m.month, m.month != ""
}

// YearMonth splits a specific designator into numbers. The month is not
// range checked.
func (m CruxMonth) YearMonth() (year, month int, ok bool) {
	if m.month == "" {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m.month[:4])
	month, _ = strconv.Atoi(m.month[4:])
	return year, month, true
}

func (m CruxMonth) String() string {
	if m.month == "" {
		return cruxMonthLatest
	}
	return m.month
}

func (m *CruxMonth) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("filterCRUXMonth: expected a string in format YYYYMM or %q", cruxMonthLatest)
	}
	if s == cruxMonthLatest {
		*m = LatestCruxMonth()
		return nil
	}
	parsed, err := SpecificCruxMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m CruxMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func isYearMonth(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
