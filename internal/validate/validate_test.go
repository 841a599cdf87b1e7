package validate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimcheck/internal/model"
	"github.com/gyeh/claimcheck/internal/store"
	"github.com/gyeh/claimcheck/internal/validate"
)

func countType(issues []model.ValidationIssue, t model.IssueType) int {
	n := 0
	for _, i := range issues {
		if i.Type == t {
			n++
		}
	}
	return n
}

func seedPTP(t *testing.T, repo *store.Memory, providerType string, pairs ...model.EditPair) {
	t.Helper()
	for i := range pairs {
		pairs[i].ProviderType = providerType
	}
	_, err := repo.ReplacePartition(context.Background(), &model.RuleSet{
		Kind: model.KindPTP, Partition: providerType, PTP: pairs,
	})
	require.NoError(t, err)
}

func seedMUE(t *testing.T, repo *store.Memory, serviceType string, rules ...model.MUERule) {
	t.Helper()
	for i := range rules {
		rules[i].ServiceType = serviceType
	}
	_, err := repo.ReplacePartition(context.Background(), &model.RuleSet{
		Kind: model.KindMUE, Partition: serviceType, MUE: rules,
	})
	require.NoError(t, err)
}

func seedAOC(t *testing.T, repo *store.Memory, rules ...model.AOCRule) {
	t.Helper()
	_, err := repo.ReplacePartition(context.Background(), &model.RuleSet{
		Kind: model.KindAOC, AOC: rules,
	})
	require.NoError(t, err)
}

func TestEmptyClaim(t *testing.T) {
	v := validate.New(store.NewMemory())
	result, err := v.Validate(context.Background(), &model.ClaimInput{}, "")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 0, result.RiskScore)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestICD10Format(t *testing.T) {
	v := validate.New(store.NewMemory())

	t.Run("valid code passes", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			ICD10Codes: []string{"M54.5"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Errors, model.IssueICDFormat))
		assert.Equal(t, 1, countType(result.Passes, model.IssueICDFormat))
	})

	t.Run("invalid code errors without pass", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			ICD10Codes: []string{"INVALID"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Errors, model.IssueICDFormat))
		assert.Equal(t, 0, countType(result.Passes, model.IssueICDFormat))
		assert.False(t, result.IsValid)
	})

	t.Run("codes with U prefix rejected", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			ICD10Codes: []string{"U07.1"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Errors, model.IssueICDFormat))
	})
}

func TestPTPBlocked(t *testing.T) {
	repo := store.NewMemory()
	seedPTP(t, repo, "practitioner", model.EditPair{
		Code1: "10021", Code2: "10022", ModifierIndicator: model.IndicatorDisallowed,
	})
	v := validate.New(repo)

	result, err := v.Validate(context.Background(), &model.ClaimInput{
		CPTCodes: []string{"10021", "10022"},
	}, "practitioner")
	require.NoError(t, err)
	assert.Equal(t, 1, countType(result.Errors, model.IssuePTPBlocked))
	assert.False(t, result.IsValid)
}

func TestPTPAllowedWithModifier(t *testing.T) {
	repo := store.NewMemory()
	seedPTP(t, repo, "practitioner", model.EditPair{
		Code1: "10021", Code2: "10022", ModifierIndicator: model.IndicatorAllowedWithModifier,
	})
	v := validate.New(repo)

	t.Run("bypass modifier present", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes:  []string{"10021", "10022"},
			Modifiers: []string{"59"},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Errors, model.IssuePTPNeedsModifier))
		assert.Equal(t, 0, countType(result.Errors, model.IssuePTPBlocked))
		assert.Equal(t, 1, countType(result.Passes, model.IssuePTPBypassed))
	})

	t.Run("bypass modifier absent", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"10021", "10022"},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Errors, model.IssuePTPNeedsModifier))
		assert.Equal(t, 0, countType(result.Passes, model.IssuePTPBypassed))
	})

	t.Run("X-series modifier bypasses", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes:  []string{"10021", "10022"},
			Modifiers: []string{"XU"},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Passes, model.IssuePTPBypassed))
	})
}

func TestPTPUnknownIndicator(t *testing.T) {
	repo := store.NewMemory()
	seedPTP(t, repo, "practitioner", model.EditPair{
		Code1: "10021", Code2: "10022", ModifierIndicator: model.IndicatorUnknown,
	})
	v := validate.New(repo)

	result, err := v.Validate(context.Background(), &model.ClaimInput{
		CPTCodes: []string{"10021", "10022"},
	}, "practitioner")
	require.NoError(t, err)
	assert.Equal(t, 1, countType(result.Warnings, model.IssuePTPUnknownIndicator))
	assert.True(t, result.IsValid, "unknown indicator never blocks")
}

func TestPTPDirectional(t *testing.T) {
	repo := store.NewMemory()
	seedPTP(t, repo, "practitioner", model.EditPair{
		Code1: "10021", Code2: "10022", ModifierIndicator: model.IndicatorDisallowed,
	})
	v := validate.New(repo)

	// Only the (10021, 10022) direction has a row; the reverse pair scan
	// must not double-report.
	result, err := v.Validate(context.Background(), &model.ClaimInput{
		CPTCodes: []string{"10022", "10021"},
	}, "practitioner")
	require.NoError(t, err)
	assert.Equal(t, 1, countType(result.Errors, model.IssuePTPBlocked))
}

func TestMUE(t *testing.T) {
	repo := store.NewMemory()
	seedMUE(t, repo, "practitioner", model.MUERule{Code: "64480", MaxUnits: 2})
	v := validate.New(repo)

	t.Run("units above maximum", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"64480"},
			Units:    map[string]int{"64480": 3},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Errors, model.IssueMUEExceeded))
	})

	t.Run("units at maximum", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"64480"},
			Units:    map[string]int{"64480": 2},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Errors, model.IssueMUEExceeded))
		assert.Equal(t, 1, countType(result.Passes, model.IssueMUE))
	})

	t.Run("missing units default to one", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"64480"},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Passes, model.IssueMUE))
	})
}

func TestAOC(t *testing.T) {
	repo := store.NewMemory()
	seedAOC(t, repo,
		model.AOCRule{AddonCode: "64484", PrimaryCode: "64483"},
		model.AOCRule{AddonCode: "64484", PrimaryCode: "64480"},
	)
	v := validate.New(repo)

	t.Run("primary missing", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"64484"},
		}, "practitioner")
		require.NoError(t, err)
		require.Equal(t, 1, countType(result.Errors, model.IssueAOCPrimaryMissing))
		var issue model.ValidationIssue
		for _, e := range result.Errors {
			if e.Type == model.IssueAOCPrimaryMissing {
				issue = e
			}
		}
		assert.ElementsMatch(t, []string{"64480", "64483"}, issue.Data["accepted_primaries"])
	})

	t.Run("primary present", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"64484", "64483"},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Errors, model.IssueAOCPrimaryMissing))
		assert.Equal(t, 1, countType(result.Passes, model.IssueAOC))
	})
}

func TestModifierFormat(t *testing.T) {
	v := validate.New(store.NewMemory())
	result, err := v.Validate(context.Background(), &model.ClaimInput{
		Modifiers: []string{"5", "599", "59"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, countType(result.Errors, model.IssueModifierInvalid))
}

func TestModifierConflicts(t *testing.T) {
	v := validate.New(store.NewMemory())

	t.Run("pair warns once", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			Modifiers: []string{"LT", "RT"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Warnings, model.IssueModifierInappropriate))
	})

	t.Run("three conflicting modifiers warn per pair", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			Modifiers: []string{"LT", "RT", "50"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 3, countType(result.Warnings, model.IssueModifierInappropriate))
	})

	t.Run("single anatomical modifier is fine", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			Modifiers: []string{"LT"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Warnings, model.IssueModifierInappropriate))
	})
}

func TestPlaceOfService(t *testing.T) {
	v := validate.New(store.NewMemory())

	result, err := v.Validate(context.Background(), &model.ClaimInput{PlaceOfService: "11"}, "")
	require.NoError(t, err)
	assert.Equal(t, 0, countType(result.Errors, model.IssuePOSInvalid))

	result, err = v.Validate(context.Background(), &model.ClaimInput{PlaceOfService: "98"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, countType(result.Errors, model.IssuePOSInvalid))
}

func TestRevenueCodes(t *testing.T) {
	v := validate.New(store.NewMemory())
	result, err := v.Validate(context.Background(), &model.ClaimInput{
		RevenueCodes: []string{"450", "45", "45X"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, countType(result.Errors, model.IssueRevenueCodeInvalid))
}

func TestEffectiveDateWarning(t *testing.T) {
	future := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	repo := store.NewMemory()
	seedMUE(t, repo, "practitioner", model.MUERule{Code: "64480", MaxUnits: 2, EffectiveDate: &future})
	v := validate.New(repo)

	t.Run("rule not yet in force", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes:  []string{"64480"},
			ClaimDate: "2026-06-01",
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 1, countType(result.Warnings, model.IssueEffectiveDateInvalid))
		assert.True(t, result.IsValid, "effective-date mismatch never blocks")
	})

	t.Run("rule already in force", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes:  []string{"64480"},
			ClaimDate: "2027-06-01",
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Warnings, model.IssueEffectiveDateInvalid))
	})

	t.Run("no claim date skips the check", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"64480"},
		}, "practitioner")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Warnings, model.IssueEffectiveDateInvalid))
	})
}

func TestPolicyDeferral(t *testing.T) {
	v := validate.New(store.NewMemory())

	t.Run("both code lists present", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes:   []string{"99213"},
			ICD10Codes: []string{"M54.5"},
		}, "")
		require.NoError(t, err)
		require.Equal(t, 1, countType(result.Warnings, model.IssueNeedsPolicyCheck))
		for _, w := range result.Warnings {
			if w.Type == model.IssueNeedsPolicyCheck {
				assert.NotEmpty(t, w.Data["research_questions"])
			}
		}
	})

	t.Run("missing diagnoses skip the deferral", func(t *testing.T) {
		result, err := v.Validate(context.Background(), &model.ClaimInput{
			CPTCodes: []string{"99213"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 0, countType(result.Warnings, model.IssueNeedsPolicyCheck))
	})
}

func TestRiskScore(t *testing.T) {
	v := validate.New(store.NewMemory())

	// 2 errors (malformed revenue codes) + 3 warnings (three mutually
	// conflicting anatomical modifiers) → min(100, 60+30) = 90.
	result, err := v.Validate(context.Background(), &model.ClaimInput{
		RevenueCodes: []string{"45", "4500"},
		Modifiers:    []string{"LT", "RT", "50"},
	}, "")
	require.NoError(t, err)
	require.Len(t, result.Errors, 2)
	require.Len(t, result.Warnings, 3)
	assert.Equal(t, 90, result.RiskScore)
}

func TestRiskScoreCapped(t *testing.T) {
	repo := store.NewMemory()
	v := validate.New(repo)
	result, err := v.Validate(context.Background(), &model.ClaimInput{
		RevenueCodes: []string{"a", "b", "c", "d"},
	}, "")
	require.NoError(t, err)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, 100, result.RiskScore)
}

func TestProviderTypeFromClaimWins(t *testing.T) {
	repo := store.NewMemory()
	seedPTP(t, repo, "hospital", model.EditPair{
		Code1: "10021", Code2: "10022", ModifierIndicator: model.IndicatorDisallowed,
	})
	v := validate.New(repo)

	// Call-site default is practitioner, but the claim says hospital; the
	// hospital partition must be consulted.
	result, err := v.Validate(context.Background(), &model.ClaimInput{
		CPTCodes:     []string{"10021", "10022"},
		ProviderType: "hospital",
	}, "practitioner")
	require.NoError(t, err)
	assert.Equal(t, 1, countType(result.Errors, model.IssuePTPBlocked))
}

type failingRepo struct{}

func (failingRepo) LookupPTP(context.Context, []string, string) ([]model.EditPair, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) LookupMUE(context.Context, []string, string) ([]model.MUERule, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) LookupAOC(context.Context, []string) ([]model.AOCRule, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) ReplacePartition(context.Context, *model.RuleSet) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestStoreFailureIsFatal(t *testing.T) {
	v := validate.New(failingRepo{})
	_, err := v.Validate(context.Background(), &model.ClaimInput{
		CPTCodes: []string{"99213"},
	}, "practitioner")
	require.Error(t, err)
}
