// Package errors provides structured, coded errors for configuration and
// content loading.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Catalog errors
	CodeCatalogInvalid       Code = "CATALOG_INVALID"
	CodeCatalogDuplicateStat Code = "CATALOG_DUPLICATE_STAT"
	CodeCatalogMissingStat   Code = "CATALOG_MISSING_STAT"
	CodeCatalogUnknownKind   Code = "CATALOG_UNKNOWN_TEMPLATE"

	// Scenario errors
	CodeScenarioLoad          Code = "SCENARIO_LOAD_FAILED"
	CodeScenarioInvalid       Code = "SCENARIO_INVALID"
	CodeScenarioUnknownPolicy Code = "SCENARIO_UNKNOWN_POLICY"

	// Roster errors
	CodeRosterEmpty        Code = "ROSTER_EMPTY"
	CodeRosterNoParty      Code = "ROSTER_NO_PARTY"
	CodeRosterInvalidStat  Code = "ROSTER_INVALID_STAT"
	CodeRosterMissingBrain Code = "ROSTER_MISSING_DECISION_SOURCE"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// InvalidInput reports whether the code describes caller-supplied content
// that can be fixed and retried, as opposed to an internal failure.
func (c Code) InvalidInput() bool {
	switch c {
	case CodeCatalogInvalid, CodeCatalogDuplicateStat, CodeCatalogMissingStat, CodeCatalogUnknownKind,
		CodeScenarioLoad, CodeScenarioInvalid, CodeScenarioUnknownPolicy,
		CodeRosterEmpty, CodeRosterNoParty, CodeRosterInvalidStat, CodeRosterMissingBrain:
		return true
	default:
		return false
	}
}
