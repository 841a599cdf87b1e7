package model

// IssueType is the closed set of validation issue kinds. Pass entries reuse
// the check's type (ICD_FORMAT, AOC, MUE, PTP_BYPASSED).
type IssueType string

const (
	IssueModifierInvalid       IssueType = "MODIFIER_INVALID"
	IssueModifierInappropriate IssueType = "MODIFIER_INAPPROPRIATE"
	IssuePOSInvalid            IssueType = "POS_INVALID"
	IssueRevenueCodeInvalid    IssueType = "REVENUE_CODE_INVALID"
	IssueICDFormat             IssueType = "ICD_FORMAT"
	IssueEffectiveDateInvalid  IssueType = "EFFECTIVE_DATE_INVALID"
	IssueAOCPrimaryMissing     IssueType = "AOC_PRIMARY_MISSING"
	IssueAOC                   IssueType = "AOC"
	IssueMUEExceeded           IssueType = "MUE_EXCEEDED"
	IssueMUE                   IssueType = "MUE"
	IssuePTPBlocked            IssueType = "PTP_BLOCKED"
	IssuePTPNeedsModifier      IssueType = "PTP_NEEDS_MODIFIER"
	IssuePTPBypassed           IssueType = "PTP_BYPASSED"
	IssuePTPUnknownIndicator   IssueType = "PTP_UNKNOWN_INDICATOR"
	IssueNeedsPolicyCheck      IssueType = "NEEDS_POLICY_CHECK"
)

// ClaimInput is the candidate claim submitted for validation. All fields
// other than the code lists are optional.
type ClaimInput struct {
	CPTCodes       []string       `json:"cpt_codes"`
	ICD10Codes     []string       `json:"icd10_codes"`
	Modifiers      []string       `json:"modifiers,omitempty"`
	PlaceOfService string         `json:"place_of_service,omitempty"`
	RevenueCodes   []string       `json:"revenue_codes,omitempty"`
	ClaimDate      string         `json:"claim_date,omitempty"` // YYYY-MM-DD
	ProviderType   string         `json:"provider_type,omitempty"`
	Units          map[string]int `json:"units,omitempty"`
}

// ValidationIssue is one typed finding. Data carries issue-specific context
// (offending codes, accepted primaries, research questions).
type ValidationIssue struct {
	Type    IssueType      `json:"type"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ValidationResult is the complete outcome of one validation call. A call
// either produces a full result or fails outright; never a partial one.
type ValidationResult struct {
	Errors    []ValidationIssue `json:"errors"`
	Warnings  []ValidationIssue `json:"warnings"`
	Passes    []ValidationIssue `json:"passes"`
	IsValid   bool              `json:"is_valid"`
	RiskScore int               `json:"risk_score"`
}

// AddError appends an error issue.
func (r *ValidationResult) AddError(t IssueType, msg string, data map[string]any) {
	r.Errors = append(r.Errors, ValidationIssue{Type: t, Message: msg, Data: data})
}

// AddWarning appends a warning issue.
func (r *ValidationResult) AddWarning(t IssueType, msg string, data map[string]any) {
	r.Warnings = append(r.Warnings, ValidationIssue{Type: t, Message: msg, Data: data})
}

// AddPass appends a pass issue.
func (r *ValidationResult) AddPass(t IssueType, msg string, data map[string]any) {
	r.Passes = append(r.Passes, ValidationIssue{Type: t, Message: msg, Data: data})
}

// Finalize computes IsValid and RiskScore from the accumulated issues:
// riskScore = min(100, 30*errors + 10*warnings).
func (r *ValidationResult) Finalize() {
	score := 30*len(r.Errors) + 10*len(r.Warnings)
	if score > 100 {
		score = 100
	}
	r.RiskScore = score
	r.IsValid = len(r.Errors) == 0
	if r.Errors == nil {
		r.Errors = []ValidationIssue{}
	}
	if r.Warnings == nil {
		r.Warnings = []ValidationIssue{}
	}
	if r.Passes == nil {
		r.Passes = []ValidationIssue{}
	}
}
