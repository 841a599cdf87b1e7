package model

import "time"

// ModifierIndicator is the CMS flag on a PTP edit pair controlling whether
// the column-2 code may ever be billed with the column-1 code.
type ModifierIndicator string

const (
	IndicatorDisallowed          ModifierIndicator = "disallowed"            // CMS "0": never allowed together
	IndicatorAllowedWithModifier ModifierIndicator = "allowed_with_modifier" // CMS "1": allowed with a bypass modifier
	IndicatorNotApplicable       ModifierIndicator = "not_applicable"        // CMS "9": edit not applicable
	IndicatorUnknown             ModifierIndicator = "unknown"
)

// ParseModifierIndicator maps the raw spreadsheet value ("0", "1", "9") to
// its canonical form. Unrecognized values map to IndicatorUnknown rather
// than being dropped: the validator treats them conservatively.
func ParseModifierIndicator(raw string) ModifierIndicator {
	switch raw {
	case "0":
		return IndicatorDisallowed
	case "1":
		return IndicatorAllowedWithModifier
	case "9":
		return IndicatorNotApplicable
	}
	return IndicatorUnknown
}

// EditPair is one directional PTP (procedure-to-procedure) edit row.
// Code1/Code2 are trimmed and uppercased at normalization time.
type EditPair struct {
	Code1             string
	Code2             string
	ModifierIndicator ModifierIndicator
	EffectiveDate     *time.Time
	ProviderType      string // "practitioner" or "hospital"
}

// PTPColumns is the ptp_edits column list in COPY order.
func PTPColumns() []string {
	return []string{"column1", "column2", "modifier_indicator", "effective_date", "provider_type"}
}

// CopyValues returns the row's values in PTPColumns order.
func (e *EditPair) CopyValues() []any {
	return []any{e.Code1, e.Code2, string(e.ModifierIndicator), e.EffectiveDate, e.ProviderType}
}

// MUERule is one MUE (medically unlikely edit) row: the maximum unit count
// considered plausible for a single code on a single date of service.
type MUERule struct {
	Code          string
	MaxUnits      int
	EffectiveDate *time.Time
	ServiceType   string // "practitioner", "hospital", or "dme"
}

// MUEColumns is the mue column list in COPY order.
func MUEColumns() []string {
	return []string{"hcpcs_cpt", "mue_value", "effective_date", "service_type"}
}

// CopyValues returns the row's values in MUEColumns order.
func (m *MUERule) CopyValues() []any {
	return []any{m.Code, m.MaxUnits, m.EffectiveDate, m.ServiceType}
}

// AOCRule is one add-on code edit row. A given addon code typically has
// many rows, one per acceptable primary code.
type AOCRule struct {
	AddonCode     string
	PrimaryCode   string
	EffectiveDate *time.Time
}

// AOCColumns is the aoc column list in COPY order.
func AOCColumns() []string {
	return []string{"addon_code", "primary_code", "effective_date"}
}

// CopyValues returns the row's values in AOCColumns order.
func (a *AOCRule) CopyValues() []any {
	return []any{a.AddonCode, a.PrimaryCode, a.EffectiveDate}
}

// RuleSet is the normalized output of one category's ingest run. Exactly
// one of the three slices is populated, matching the category kind.
type RuleSet struct {
	Kind      DatasetKind
	Partition string // provider/service type; "" for AOC
	PTP       []EditPair
	MUE       []MUERule
	AOC       []AOCRule
}

// Len returns the number of rows in whichever slice is populated.
func (r *RuleSet) Len() int {
	switch r.Kind {
	case KindPTP:
		return len(r.PTP)
	case KindMUE:
		return len(r.MUE)
	case KindAOC:
		return len(r.AOC)
	}
	return 0
}
