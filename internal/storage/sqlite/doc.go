// Package sqlite stores encounter reports in SQLite.
//
// Each encounter is one row in encounters and one row per slot in
// encounter_combatants. Cast counters are kept as a JSON object keyed by
// ability name.
package sqlite
