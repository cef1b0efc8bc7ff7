package relations

import (
	"testing"

	"github.com/bawdo/joinery/schema"
)

// gameSchema is the fixture used across the package tests: players belong
// to a team, contracts link players to sponsors, and a player may also
// reference the team that drafted them through a second foreign key.
func gameSchema() *schema.Database {
	return schema.NewDatabase(
		&schema.Table{
			Name:    "player",
			Columns: []string{"id", "name", "team_id", "drafted_by"},
			ForeignKeys: []schema.ForeignKey{
				{Name: "player_team_fk", To: "team", Pairs: []schema.ColumnPair{{Origin: "team_id", Destination: "id"}}},
				{Name: "player_drafted_fk", To: "team", Pairs: []schema.ColumnPair{{Origin: "drafted_by", Destination: "id"}}},
			},
		},
		&schema.Table{
			Name:    "team",
			Columns: []string{"id", "title"},
		},
		&schema.Table{
			Name:    "contract",
			Columns: []string{"id", "player_id", "sponsor_id"},
			ForeignKeys: []schema.ForeignKey{
				{Name: "contract_player_fk", To: "player", Pairs: []schema.ColumnPair{{Origin: "player_id", Destination: "id"}}},
				{Name: "contract_sponsor_fk", To: "sponsor", Pairs: []schema.ColumnPair{{Origin: "sponsor_id", Destination: "id"}}},
			},
		},
		&schema.Table{
			Name:    "sponsor",
			Columns: []string{"id", "brand"},
		},
	)
}

func mustNamedFK(t *testing.T, db *schema.Database, origin, name string) schema.ForeignKey {
	t.Helper()
	fk, err := db.NamedForeignKey(origin, name)
	if err != nil {
		t.Fatalf("resolve foreign key %s.%s: %v", origin, name, err)
	}
	return fk
}

// teamAssoc is player -> team through the primary team foreign key.
func teamAssoc(t *testing.T, db *schema.Database) DirectJoin {
	t.Helper()
	return BelongsTo("team", mustNamedFK(t, db, "player", "player_team_fk"))
}

// draftedByAssoc is player -> team through the drafted_by foreign key.
func draftedByAssoc(t *testing.T, db *schema.Database) DirectJoin {
	t.Helper()
	return BelongsTo("drafted_by", mustNamedFK(t, db, "player", "player_drafted_fk"))
}

// playersAssoc is team -> player.
func playersAssoc(t *testing.T, db *schema.Database) DirectJoin {
	t.Helper()
	return HasMany("players", "player", mustNamedFK(t, db, "player", "player_team_fk"))
}

// contractsAssoc is player -> contract.
func contractsAssoc(t *testing.T, db *schema.Database) DirectJoin {
	t.Helper()
	return HasMany("contracts", "contract", mustNamedFK(t, db, "contract", "contract_player_fk"))
}

// sponsorAssoc is contract -> sponsor.
func sponsorAssoc(t *testing.T, db *schema.Database) DirectJoin {
	t.Helper()
	return BelongsTo("sponsor", mustNamedFK(t, db, "contract", "contract_sponsor_fk"))
}

// sponsorsAssoc is player -> sponsor across contracts.
func sponsorsAssoc(t *testing.T, db *schema.Database) ThroughPivot {
	t.Helper()
	return HasManyThrough("sponsors", contractsAssoc(t, db), sponsorAssoc(t, db))
}
