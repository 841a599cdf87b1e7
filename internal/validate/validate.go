// Package validate evaluates a candidate claim against the NCCI rule store
// plus static format rules. Validation is pure and read-only: it runs every
// check unconditionally, accumulates typed issues, and never throws for a
// malformed-but-well-typed claim. Only rule store failures propagate.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gyeh/claimcheck/internal/model"
	"github.com/gyeh/claimcheck/internal/store"
)

var (
	modifierPattern = regexp.MustCompile(`^[A-Z0-9]{2}$`)
	revenuePattern  = regexp.MustCompile(`^[0-9]{3}$`)
	icd10Pattern    = regexp.MustCompile(`^[A-TV-Z][0-9][0-9A-Z](\.[0-9A-Z]{1,4})?$`)
)

// bypassModifiers signal that two normally-bundled codes were medically
// distinct, lifting an allowed-with-modifier PTP edit.
var bypassModifiers = map[string]bool{
	"59": true, "XE": true, "XP": true, "XS": true, "XU": true,
}

// anatomicalModifiers may not co-occur on one claim line set: laterality
// and multiple-procedure modifiers are mutually exclusive.
var anatomicalModifiers = []string{"50", "51", "LT", "RT"}

// knownPlaceOfService is the CMS place-of-service code set.
var knownPlaceOfService = map[string]bool{
	"01": true, "02": true, "03": true, "04": true, "05": true, "06": true,
	"07": true, "08": true, "09": true, "10": true, "11": true, "12": true,
	"13": true, "14": true, "15": true, "16": true, "17": true, "18": true,
	"19": true, "20": true, "21": true, "22": true, "23": true, "24": true,
	"25": true, "26": true, "27": true, "31": true, "32": true, "33": true,
	"34": true, "41": true, "42": true, "49": true, "50": true, "51": true,
	"52": true, "53": true, "54": true, "55": true, "56": true, "57": true,
	"58": true, "60": true, "61": true, "62": true, "65": true, "66": true,
	"71": true, "72": true, "81": true, "99": true,
}

// Validator evaluates claims against an injected RuleRepository.
type Validator struct {
	repo store.RuleRepository
}

// New creates a Validator backed by the given repository.
func New(repo store.RuleRepository) *Validator {
	return &Validator{repo: repo}
}

// Validate runs all checks over the claim and returns a complete result, or
// an error if the rule store is unreachable. defaultProviderType applies
// when the claim carries no provider_type; the claim's own value wins.
func (v *Validator) Validate(ctx context.Context, claim *model.ClaimInput, defaultProviderType string) (*model.ValidationResult, error) {
	result := &model.ValidationResult{}

	providerType := claim.ProviderType
	if providerType == "" {
		providerType = defaultProviderType
	}

	codes := normalizeCodes(claim.CPTCodes)
	modifiers := normalizeCodes(claim.Modifiers)

	v.checkModifierFormat(modifiers, result)
	v.checkModifierConflicts(modifiers, result)
	v.checkPlaceOfService(claim.PlaceOfService, result)
	v.checkRevenueCodes(claim.RevenueCodes, result)
	v.checkICD10(claim.ICD10Codes, result)

	// One batched lookup per rule family for the whole claim.
	ptpRows, err := v.repo.LookupPTP(ctx, codes, ptpProviderType(providerType))
	if err != nil {
		return nil, fmt.Errorf("ptp lookup: %w", err)
	}
	mueRows, err := v.repo.LookupMUE(ctx, codes, mueServiceType(providerType))
	if err != nil {
		return nil, fmt.Errorf("mue lookup: %w", err)
	}
	aocRows, err := v.repo.LookupAOC(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("aoc lookup: %w", err)
	}

	v.checkEffectiveDates(claim.ClaimDate, ptpRows, mueRows, aocRows, result)
	v.checkAOC(codes, aocRows, result)
	v.checkMUE(codes, claim.Units, mueRows, result)
	v.checkPTP(codes, modifiers, ptpRows, result)
	v.checkPolicyDeferral(claim, codes, result)

	result.Finalize()
	return result, nil
}

// normalizeCodes trims, uppercases, and dedupes while preserving order.
func normalizeCodes(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, c := range raw {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ptpProviderType maps the claim's provider type onto a PTP partition.
func ptpProviderType(providerType string) string {
	if providerType == "hospital" || providerType == "asc" {
		return "hospital"
	}
	return "practitioner"
}

// mueServiceType maps the claim's provider type onto an MUE service type.
// Empty means unscoped lookup.
func mueServiceType(providerType string) string {
	switch providerType {
	case "practitioner", "hospital", "dme":
		return providerType
	case "asc":
		return "hospital"
	}
	return ""
}

func (v *Validator) checkModifierFormat(modifiers []string, result *model.ValidationResult) {
	for _, m := range modifiers {
		if !modifierPattern.MatchString(m) {
			result.AddError(model.IssueModifierInvalid,
				fmt.Sprintf("modifier %q is not a valid two-character modifier", m),
				map[string]any{"modifier": m})
		}
	}
}

// checkModifierConflicts warns once per conflicting pair of anatomical
// modifiers, never duplicated for the reverse direction.
func (v *Validator) checkModifierConflicts(modifiers []string, result *model.ValidationResult) {
	var present []string
	for _, a := range anatomicalModifiers {
		for _, m := range modifiers {
			if m == a {
				present = append(present, a)
				break
			}
		}
	}
	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			result.AddWarning(model.IssueModifierInappropriate,
				fmt.Sprintf("modifiers %s and %s should not be billed together", present[i], present[j]),
				map[string]any{"modifiers": []string{present[i], present[j]}})
		}
	}
}

func (v *Validator) checkPlaceOfService(pos string, result *model.ValidationResult) {
	pos = strings.TrimSpace(pos)
	if pos == "" {
		return
	}
	if !knownPlaceOfService[pos] {
		result.AddError(model.IssuePOSInvalid,
			fmt.Sprintf("place of service %q is not a known CMS code", pos),
			map[string]any{"place_of_service": pos})
	}
}

func (v *Validator) checkRevenueCodes(revenueCodes []string, result *model.ValidationResult) {
	for _, rc := range revenueCodes {
		rc = strings.TrimSpace(rc)
		if !revenuePattern.MatchString(rc) {
			result.AddError(model.IssueRevenueCodeInvalid,
				fmt.Sprintf("revenue code %q must be exactly three digits", rc),
				map[string]any{"revenue_code": rc})
		}
	}
}

func (v *Validator) checkICD10(icdCodes []string, result *model.ValidationResult) {
	failed := false
	for _, code := range icdCodes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !icd10Pattern.MatchString(code) {
			failed = true
			result.AddError(model.IssueICDFormat,
				fmt.Sprintf("ICD-10 code %q is not structurally valid", code),
				map[string]any{"code": code})
		}
	}
	if len(icdCodes) > 0 && !failed {
		result.AddPass(model.IssueICDFormat, "all ICD-10 codes are structurally valid", nil)
	}
}

// checkEffectiveDates warns once when any relevant rule row takes effect
// strictly after the claim's service date. Never blocking.
func (v *Validator) checkEffectiveDates(claimDate string, ptp []model.EditPair, mue []model.MUERule, aoc []model.AOCRule, result *model.ValidationResult) {
	if claimDate == "" {
		return
	}
	serviceDate, err := time.Parse("2006-01-02", claimDate)
	if err != nil {
		return
	}

	var future []string
	for _, e := range ptp {
		if e.EffectiveDate != nil && e.EffectiveDate.After(serviceDate) {
			future = append(future, e.Code1+"/"+e.Code2)
		}
	}
	for _, r := range mue {
		if r.EffectiveDate != nil && r.EffectiveDate.After(serviceDate) {
			future = append(future, r.Code)
		}
	}
	for _, r := range aoc {
		if r.EffectiveDate != nil && r.EffectiveDate.After(serviceDate) {
			future = append(future, r.AddonCode)
		}
	}
	if len(future) > 0 {
		result.AddWarning(model.IssueEffectiveDateInvalid,
			"some matched rules are not yet in force on the claim date",
			map[string]any{"claim_date": claimDate, "rules": future})
	}
}

// checkAOC requires every billed add-on code to be accompanied by at least
// one of its acceptable primary codes.
func (v *Validator) checkAOC(codes []string, aocRows []model.AOCRule, result *model.ValidationResult) {
	billed := make(map[string]bool, len(codes))
	for _, c := range codes {
		billed[c] = true
	}

	primaries := make(map[string][]string)
	for _, r := range aocRows {
		primaries[r.AddonCode] = append(primaries[r.AddonCode], r.PrimaryCode)
	}

	addons := make([]string, 0, len(primaries))
	for addon := range primaries {
		addons = append(addons, addon)
	}
	sort.Strings(addons)

	for _, addon := range addons {
		accepted := primaries[addon]
		found := false
		for _, p := range accepted {
			if billed[p] {
				found = true
				break
			}
		}
		if found {
			result.AddPass(model.IssueAOC,
				fmt.Sprintf("add-on code %s has a qualifying primary code on the claim", addon),
				map[string]any{"addon_code": addon})
		} else {
			sort.Strings(accepted)
			result.AddError(model.IssueAOCPrimaryMissing,
				fmt.Sprintf("add-on code %s requires one of its primary codes on the same claim", addon),
				map[string]any{"addon_code": addon, "accepted_primaries": accepted})
		}
	}
}

// checkMUE compares billed units (default 1) against each code's maximum.
// When several rules match a code, the lowest maximum wins.
func (v *Validator) checkMUE(codes []string, units map[string]int, mueRows []model.MUERule, result *model.ValidationResult) {
	maxByCode := make(map[string]int)
	for _, r := range mueRows {
		if existing, ok := maxByCode[r.Code]; !ok || r.MaxUnits < existing {
			maxByCode[r.Code] = r.MaxUnits
		}
	}

	for _, code := range codes {
		maxUnits, ok := maxByCode[code]
		if !ok {
			continue
		}
		billed := 1
		if u, ok := units[code]; ok {
			billed = u
		}
		if billed > maxUnits {
			result.AddError(model.IssueMUEExceeded,
				fmt.Sprintf("code %s billed with %d units, exceeding the MUE maximum of %d", code, billed, maxUnits),
				map[string]any{"code": code, "units": billed, "max_units": maxUnits})
		} else {
			result.AddPass(model.IssueMUE,
				fmt.Sprintf("code %s within its MUE maximum", code),
				map[string]any{"code": code, "units": billed, "max_units": maxUnits})
		}
	}
}

// checkPTP evaluates every ordered pair of billed codes against the edit
// rows. Rows are directional; absence of a row for a pair is not a finding.
func (v *Validator) checkPTP(codes, modifiers []string, ptpRows []model.EditPair, result *model.ValidationResult) {
	edits := make(map[[2]string]model.EditPair, len(ptpRows))
	for _, e := range ptpRows {
		edits[[2]string{e.Code1, e.Code2}] = e
	}

	hasBypass := false
	for _, m := range modifiers {
		if bypassModifiers[m] {
			hasBypass = true
			break
		}
	}

	for _, c1 := range codes {
		for _, c2 := range codes {
			if c1 == c2 {
				continue
			}
			edit, ok := edits[[2]string{c1, c2}]
			if !ok {
				continue
			}
			data := map[string]any{"column1": c1, "column2": c2}
			switch edit.ModifierIndicator {
			case model.IndicatorDisallowed:
				result.AddError(model.IssuePTPBlocked,
					fmt.Sprintf("codes %s and %s may never be billed together", c1, c2), data)
			case model.IndicatorAllowedWithModifier:
				if hasBypass {
					result.AddPass(model.IssuePTPBypassed,
						fmt.Sprintf("edit on %s/%s bypassed by modifier", c1, c2), data)
				} else {
					result.AddError(model.IssuePTPNeedsModifier,
						fmt.Sprintf("codes %s and %s require a bypass modifier (59, XE, XP, XS, or XU)", c1, c2), data)
				}
			default:
				data["modifier_indicator"] = string(edit.ModifierIndicator)
				result.AddWarning(model.IssuePTPUnknownIndicator,
					fmt.Sprintf("edit on %s/%s has an unrecognized modifier indicator", c1, c2), data)
			}
		}
	}
}

// checkPolicyDeferral emits the standing medical-necessity research warning
// whenever the claim has both procedure and diagnosis codes. Necessity is
// never adjudicated here.
func (v *Validator) checkPolicyDeferral(claim *model.ClaimInput, codes []string, result *model.ValidationResult) {
	if len(claim.CPTCodes) == 0 || len(claim.ICD10Codes) == 0 {
		return
	}
	questions := []string{
		fmt.Sprintf("Are procedures %s medically necessary for the reported diagnoses?", strings.Join(codes, ", ")),
		"Do the reported diagnoses support coverage under the payer's policy?",
		"Is there an applicable LCD/NCD for these procedure/diagnosis combinations?",
		"Does the documentation on file support the billed services?",
	}
	result.AddWarning(model.IssueNeedsPolicyCheck,
		"medical necessity and coverage require external policy research",
		map[string]any{
			"research_questions": questions,
			"cpt_codes":          claim.CPTCodes,
			"icd10_codes":        claim.ICD10Codes,
		})
}
