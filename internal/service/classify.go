package service

import (
	"strings"

	"github.com/consulting-control/backend/internal/models"
)

// legacyInternalPrefix predates the configurable mapping. Older datasets mark
// internal projects by code only, so the prefix fallback stays active after
// all explicit rules have been tried.
const legacyInternalPrefix = "INT"

const (
	ClassExcludedServiceType = "excluded_service_type"
	ClassInternalServiceType = "internal_service_type"
	ClassExactProject        = "exact_project"
	ClassTokenMatch          = "token_match"
	ClassLegacyPrefix        = "legacy_prefix"
	ClassLegacyToken         = "legacy_token"
)

// RuleSet is the immutable classification configuration for one evaluation
// run. Build it once via NewRuleSet and pass it by value; there is no shared
// mutable mapping state.
type RuleSet struct {
	exactProjects map[string]struct{}
	tokens        []string
	// service-type prefixes
	absencePrefix  string
	internalPrefix string
}

func NewRuleSet(mapping models.Mapping, absencePrefix, internalPrefix string) RuleSet {
	rs := RuleSet{
		exactProjects:  make(map[string]struct{}, len(mapping.Projects)),
		absencePrefix:  strings.ToUpper(strings.TrimSpace(absencePrefix)),
		internalPrefix: strings.ToUpper(strings.TrimSpace(internalPrefix)),
	}
	for _, p := range mapping.Projects {
		key := strings.ToUpper(strings.TrimSpace(p))
		if key == "" {
			continue
		}
		rs.exactProjects[key] = struct{}{}
	}
	for _, t := range mapping.Tokens {
		tok := strings.ToLower(strings.TrimSpace(t))
		if tok == "" {
			continue
		}
		rs.tokens = append(rs.tokens, tok)
	}
	return rs
}

// Verdict carries the classification outcome. Excluded records (absence and
// leave bookings) are neither internal nor billable and must be skipped
// before any ratio is computed.
type Verdict struct {
	Excluded bool   `json:"excluded"`
	Internal bool   `json:"internal"`
	Reason   string `json:"reason,omitempty"`
}

// Classify decides whether a record represents internal work. The rule order
// is load-bearing: absence exclusion short-circuits everything so leave never
// counts as internal or productive, and operator-configured rules override
// the legacy prefix heuristics. First match wins.
func Classify(rec models.TimeRecord, rules RuleSet) Verdict {
	serviceType := strings.ToUpper(strings.TrimSpace(rec.ServiceTypeCode))
	if rules.absencePrefix != "" && strings.HasPrefix(serviceType, rules.absencePrefix) {
		return Verdict{Excluded: true, Reason: ClassExcludedServiceType}
	}
	if rules.internalPrefix != "" && strings.HasPrefix(serviceType, rules.internalPrefix) {
		return Verdict{Internal: true, Reason: ClassInternalServiceType}
	}

	code := strings.ToUpper(strings.TrimSpace(rec.ProjectCode))
	if _, ok := rules.exactProjects[code]; ok {
		return Verdict{Internal: true, Reason: ClassExactProject}
	}

	combined := strings.TrimSpace(rec.ProjectCode + " " + rec.ProjectName)
	combinedLower := strings.ToLower(combined)
	for _, tok := range rules.tokens {
		if strings.Contains(combinedLower, tok) {
			return Verdict{Internal: true, Reason: ClassTokenMatch}
		}
	}

	if strings.HasPrefix(code, legacyInternalPrefix) ||
		strings.HasPrefix(strings.ToUpper(strings.TrimSpace(rec.ProjectName)), legacyInternalPrefix) {
		return Verdict{Internal: true, Reason: ClassLegacyPrefix}
	}
	if hasWholeToken(combined, legacyInternalPrefix) {
		return Verdict{Internal: true, Reason: ClassLegacyToken}
	}

	return Verdict{}
}

// hasWholeToken reports whether needle appears as a whole delimiter-separated
// token in s. "X INT Y" matches; "INTEGRATION" does not.
func hasWholeToken(s, needle string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '-', '_', '/', '.', ',', ';', ':':
			return true
		}
		return false
	})
	for _, f := range fields {
		if strings.EqualFold(f, needle) {
			return true
		}
	}
	return false
}
