package platform

import (
	"net/http"
	"strconv"
)

// farcasterProvider covers Farcaster/Base mini-app embeds. The fid comes
// from the client-side SDK context; referrals ride plain ?ref= query params
// instead of Telegram start params.
type farcasterProvider struct {
	user *User
	ref  string
}

func newFarcasterProvider(r *http.Request, p AuthPayload) *farcasterProvider {
	fp := &farcasterProvider{ref: p.Ref}
	if fp.ref == "" {
		fp.ref = refQuery(r)
	}
	if p.Fid > 0 {
		username := p.Username
		if username == "" {
			username = "fid_" + strconv.FormatInt(p.Fid, 10)
		}
		fp.user = &User{ID: p.Fid, Username: username, PhotoURL: p.PhotoURL}
	}
	return fp
}

func (p *farcasterProvider) Platform() Platform    { return Farcaster }
func (p *farcasterProvider) User() *User           { return p.user }
func (p *farcasterProvider) ReferralParam() string { return p.ref }

func (p *farcasterProvider) ShareLink(botUsername, shortName string, userID int64) string {
	return gameURL(botUsername, shortName) + "?ref=" + strconv.FormatInt(userID, 10)
}
