package history

import (
	"testing"

	"github.com/huangsam/repostats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBots(t *testing.T) {
	h := fixtureHistory(t)

	tests := []struct {
		name        string
		filter      BotFilter
		removed     int
		wantDeltas  int
		stillHashed string
	}{
		{"default indicator", BotFilter{NameIndicators: DefaultBotNameIndicators}, 1, 6, "c3b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4"},
		{"exact name ignores case", BotFilter{Names: []string{"ALICE SMITH"}}, 2, 4, "b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3"},
		{"committer matches too", BotFilter{Names: []string{"github"}}, 2, 3, "a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3b2"},
		{"email indicator", BotFilter{EmailIndicators: []string{"@Users.Noreply.GitHub.com"}}, 1, 6, "a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3b2"},
		{"empty filter", BotFilter{Names: []string{""}}, 0, 7, "b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3b2a1d4c3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, removed := FilterBots(h, tt.filter)
			assert.Equal(t, tt.removed, removed)
			assert.Len(t, out.Summaries, len(h.Summaries)-tt.removed)
			assert.Len(t, out.Deltas, tt.wantDeltas)

			hashes := make(map[string]bool)
			for _, s := range out.Summaries {
				hashes[s.Hash] = true
				assert.False(t, tt.filter.IsBot(s.CommitMeta))
			}
			for _, d := range out.Deltas {
				assert.True(t, hashes[d.Hash], "delta of a removed commit survived")
			}
			assert.True(t, hashes[tt.stillHashed])
		})
	}
}

func TestFilterBotsIdempotent(t *testing.T) {
	h := fixtureHistory(t)
	filter := BotFilter{NameIndicators: DefaultBotNameIndicators, EmailIndicators: []string{"bot@"}}

	once, removed := FilterBots(h, filter)
	require.Equal(t, 1, removed)
	twice, removedAgain := FilterBots(once, filter)
	assert.Equal(t, 0, removedAgain)
	assert.Equal(t, once, twice)
}

func TestBotFilterNilIdentity(t *testing.T) {
	filter := BotFilter{NameIndicators: []string{"bot"}, EmailIndicators: []string{"bot"}}
	assert.False(t, filter.IsBot(schema.CommitMeta{}))
	assert.True(t, filter.IsBot(schema.CommitMeta{Committer: schema.Identity{Email: "ci-bot@example.com"}}))
}
