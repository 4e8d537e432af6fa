package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbility(t *testing.T) {
	tests := []struct {
		code int
		want Ability
	}{
		{code: 15, want: Attack},
		{code: 19, want: Reap},
		{code: 29, want: Cover},
		{code: 20, want: Idle},
		{code: 0, want: Idle},
		{code: -4, want: Idle},
		{code: 300, want: Idle},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAbility(tt.code), "code %d", tt.code)
	}
}

func TestAbilityHostility(t *testing.T) {
	hostile := map[Ability]bool{Attack: true, Fire: true, Poison: true, Reap: true, Drain: true, Sleep: true}
	for _, a := range Abilities() {
		assert.Equal(t, hostile[a], a.Hostile(), a.String())
	}
}

func TestAbilityUsesTarget(t *testing.T) {
	assert.False(t, Idle.UsesTarget())
	assert.False(t, Berserk.UsesTarget())
	assert.False(t, Ability(99).UsesTarget())
	assert.True(t, Cover.UsesTarget())
	assert.True(t, Cure.UsesTarget())
}

func TestAbilityCost(t *testing.T) {
	tests := []struct {
		ability Ability
		mpMax   int
		want    int
	}{
		{Attack, 100, 0},
		{Reap, 100, 0},
		{Cover, 100, 0},
		{Berserk, 100, 0},
		{Cure, 100, 10},
		{Fire, 95, 9},
		{Poison, 100, 5},
		{Poison, 30, 1},
		{Refresh, 100, 33},
		{Haste, 100, 25},
		{Sleep, 100, 10},
		{Blink, 100, 10},
		{Drain, 100, 10},
		{Protect, 100, 10},
		{Regen, 100, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ability.Cost(tt.mpMax), "%s with mp max %d", tt.ability, tt.mpMax)
	}
}

func TestAbilityByName(t *testing.T) {
	a, err := AbilityByName(" fire ")
	require.NoError(t, err)
	assert.Equal(t, Fire, a)

	a, err = AbilityByName("reap")
	require.NoError(t, err)
	assert.Equal(t, Reap, a)

	_, err = AbilityByName("meteor")
	assert.Error(t, err)
}

func TestAbilityString(t *testing.T) {
	assert.Equal(t, "Reaper", Reap.String())
	assert.Equal(t, "Ability(42)", Ability(42).String())
}
