package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/catalog"
)

// AbilityCatalogInput is empty; the tool takes no arguments.
type AbilityCatalogInput struct{}

// AbilityEntry describes one ability.
type AbilityEntry struct {
	Code       int    `json:"code" jsonschema:"ability code decision sources return"`
	Name       string `json:"name" jsonschema:"display name"`
	Hostile    bool   `json:"hostile" jsonschema:"whether the ability targets the opposing faction"`
	UsesTarget bool   `json:"uses_target" jsonschema:"whether the ability acts on a chosen slot"`
	CostAt100  int    `json:"cost_at_100" jsonschema:"mp cost for a caster with 100 max mp"`
}

// StatEntry describes one catalog stat.
type StatEntry struct {
	Name    string `json:"name" jsonschema:"stat name"`
	Matched bool   `json:"matched" jsonschema:"whether the stat always reads as its max"`
	Exposed bool   `json:"exposed" jsonschema:"whether decision sources see the stat"`
}

// TemplateEntry describes one combatant template at level 1.
type TemplateEntry struct {
	Name    string         `json:"name" jsonschema:"template name"`
	Actions []string       `json:"actions" jsonschema:"action list, in index order"`
	Stats   map[string]int `json:"stats" jsonschema:"stat maxima at level 1"`
}

// AbilityCatalogResult is the ability_catalog output.
type AbilityCatalogResult struct {
	Abilities []AbilityEntry  `json:"abilities" jsonschema:"every ability, Idle first"`
	Stats     []StatEntry     `json:"stats" jsonschema:"stats in sensor order"`
	Templates []TemplateEntry `json:"templates" jsonschema:"combatant templates"`
}

// AbilityCatalogTool defines the MCP tool schema for the catalog listing.
func AbilityCatalogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "ability_catalog",
		Description: "Lists abilities, stats and combatant templates available to scenarios",
	}
}

// AbilityCatalogHandler lists the catalog.
func AbilityCatalogHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[AbilityCatalogInput, AbilityCatalogResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ AbilityCatalogInput) (*mcp.CallToolResult, AbilityCatalogResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, AbilityCatalogResult{}, err
		}
		return nil, describeCatalog(cat), nil
	}
}

func describeCatalog(cat *catalog.Catalog) AbilityCatalogResult {
	var out AbilityCatalogResult
	for _, a := range battle.Abilities() {
		out.Abilities = append(out.Abilities, AbilityEntry{
			Code:       int(a),
			Name:       a.String(),
			Hostile:    a.Hostile(),
			UsesTarget: a.UsesTarget(),
			CostAt100:  a.Cost(100),
		})
	}
	for _, s := range cat.Stats() {
		out.Stats = append(out.Stats, StatEntry{Name: s.Name, Matched: s.Matched, Exposed: s.Exposed})
	}
	for _, name := range cat.Templates() {
		tmpl, err := cat.Template(name)
		if err != nil {
			continue
		}
		entry := TemplateEntry{Name: tmpl.Name, Stats: map[string]int{}}
		for _, a := range tmpl.ActionList() {
			entry.Actions = append(entry.Actions, a.String())
		}
		attrs := tmpl.Attributes(1)
		stats := attrs.Stats()
		for _, stat := range battle.StatNames() {
			if s, ok := stats.ByName(stat); ok && stat != battle.StatGauge {
				entry.Stats[stat] = s.Max
			}
		}
		out.Templates = append(out.Templates, entry)
	}
	return out
}
