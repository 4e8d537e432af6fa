// Package battle resolves party-versus-party encounters.
//
// An Encounter owns a Roster of combatants and a StatusBoard. Combatants act
// when their turn gauge fills; each actor's DecisionSource picks an ability
// and a raw target slot, the target is repaired and possibly redirected to a
// coverer, the ability is resolved into stat and status changes, and deaths
// are settled. Everything the encounter narrates goes to a Sink.
//
// An encounter is single-threaded. Independent encounters share nothing and
// may run in parallel.
package battle
