package platform

import (
	"net/http"
	"strconv"
)

// webProvider is the fallback when neither Telegram nor a mini-app embed is
// detected. It carries no identity; the bootstrap layer synthesizes a guest
// profile for it.
type webProvider struct {
	ref string
}

func newWebProvider(r *http.Request) *webProvider {
	return &webProvider{ref: refQuery(r)}
}

func (p *webProvider) Platform() Platform    { return Web }
func (p *webProvider) User() *User           { return nil }
func (p *webProvider) ReferralParam() string { return p.ref }

func (p *webProvider) ShareLink(botUsername, shortName string, userID int64) string {
	return gameURL(botUsername, shortName) + "?ref=" + strconv.FormatInt(userID, 10)
}
