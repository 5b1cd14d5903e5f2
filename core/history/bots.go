package history

import (
	"strings"

	"github.com/huangsam/repostats/schema"
)

// DefaultBotNameIndicators match the GitHub app account naming convention.
var DefaultBotNameIndicators = []string{"[bot]"}

// BotFilter decides which commits were made by automation.
// All comparisons are case-insensitive; empty entries are ignored.
type BotFilter struct {
	Names           []string `json:"bot_names"`
	NameIndicators  []string `json:"bot_name_indicators"`
	EmailIndicators []string `json:"bot_email_indicators"`
}

// IsBot reports whether the author or the committer of a commit is a bot.
func (f BotFilter) IsBot(meta schema.CommitMeta) bool {
	return f.isBotIdentity(meta.Author) || f.isBotIdentity(meta.Committer)
}

func (f BotFilter) isBotIdentity(id schema.Identity) bool {
	name := strings.ToLower(id.Name)
	email := strings.ToLower(id.Email)
	if name != "" {
		for _, n := range f.Names {
			if n != "" && name == strings.ToLower(n) {
				return true
			}
		}
		if containsAny(name, f.NameIndicators) {
			return true
		}
	}
	return email != "" && containsAny(email, f.EmailIndicators)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter can match nothing.
func (f BotFilter) Empty() bool {
	return nonEmpty(f.Names)+nonEmpty(f.NameIndicators)+nonEmpty(f.EmailIndicators) == 0
}

func nonEmpty(items []string) int {
	n := 0
	for _, s := range items {
		if s != "" {
			n++
		}
	}
	return n
}

// FilterBots drops every bot commit from both tables and returns the number of
// commits removed. Applying it twice removes nothing the second time.
func FilterBots(h schema.History, filter BotFilter) (schema.History, int) {
	if filter.Empty() {
		return h, 0
	}
	return keepCommits(h, func(meta schema.CommitMeta) bool {
		return !filter.IsBot(meta)
	})
}
