package domain

// Mission is a one-time or daily task with a fixed snip reward. Link-based
// missions open an external URL and go through a short claim wait; instant
// missions (empty Link) are credited immediately.
type Mission struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reward int64  `json:"reward"`
	Link   string `json:"link"`
	Icon   string `json:"icon"`
	Daily  bool   `json:"daily"`
}

// Instant reports whether the mission is claimed without an external link.
func (m Mission) Instant() bool {
	return m.Link == ""
}

var Missions = []Mission{
	{ID: "twitter_follow_clankertap", Title: "Follow @ClankerTap on X", Reward: 50000, Link: "https://x.com/ClankerTap", Icon: "🐦"},
	{ID: "twitter_follow_clanker_world", Title: "Follow @clanker_world on X", Reward: 50000, Link: "https://x.com/clanker_world", Icon: "🐦"},
	{ID: "twitter_follow_base", Title: "Follow @base on X", Reward: 50000, Link: "https://x.com/base", Icon: "🔵"},
	{ID: "twitter_follow_neynarxyz", Title: "Follow @neynarxyz on X", Reward: 50000, Link: "https://x.com/neynarxyz", Icon: "🐦"},
	{ID: "twitter_follow_jessepollak", Title: "Follow @jessepollak on X", Reward: 50000, Link: "https://x.com/jessepollak", Icon: "🐦"},
	{ID: "twitter_follow_baseposting", Title: "Follow @baseposting on X", Reward: 50000, Link: "https://x.com/baseposting", Icon: "🐦"},
	{ID: "daily_login", Title: "Daily Login Bonus", Reward: 10000, Link: "", Icon: "📅", Daily: true},
	{ID: "daily_tweet_clanker", Title: "Tweet about Clanker Tap", Reward: 25000, Link: "", Icon: "✍️", Daily: true},
}

// MissionByID looks a mission up in the catalog.
func MissionByID(id string) (Mission, bool) {
	for _, m := range Missions {
		if m.ID == id {
			return m, true
		}
	}
	return Mission{}, false
}
