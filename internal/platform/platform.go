package platform

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Platform identifies which host client launched the mini-app.
type Platform string

const (
	Telegram  Platform = "telegram"
	Farcaster Platform = "farcaster"
	Web       Platform = "web"
)

// User is the platform-native identity. Farcaster fids and Telegram ids
// share one numeric keyspace in the users table.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Provider is the host capability surface. Exactly one concrete variant is
// selected per auth request; downstream code never branches on the platform.
type Provider interface {
	Platform() Platform
	// User returns nil when the host exposes no identity (plain web).
	User() *User
	// ReferralParam is the raw start/ref parameter carried by the launch
	// context, "" when absent.
	ReferralParam() string
	// ShareLink builds the referral deep link for this platform.
	ShareLink(botUsername, shortName string, userID int64) string
}

var ErrInvalidInitData = errors.New("invalid or stale telegram init data")

// AuthPayload carries the client-supplied launch context of an auth request.
type AuthPayload struct {
	InitData string `json:"init_data"`
	MiniApp  bool   `json:"mini_app"`
	Fid      int64  `json:"fid"`
	Username string `json:"username"`
	PhotoURL string `json:"photo_url"`
	Ref      string `json:"ref"`
}

// Resolve picks the host platform for a request. Policy, in order: a Telegram
// init_data blob carrying a user wins; an embedded/mini-app hint selects
// farcaster; everything else is plain web. Detection is synchronous and
// happens once per session, at auth time.
func Resolve(r *http.Request, p AuthPayload, botToken string) (Provider, error) {
	if p.InitData != "" {
		user, startParam, ok := ValidateInitData(p.InitData, botToken)
		if !ok || user == nil {
			return nil, ErrInvalidInitData
		}
		return &telegramProvider{user: user, startParam: startParam}, nil
	}

	if isMiniAppContext(r, p) {
		return newFarcasterProvider(r, p), nil
	}

	return newWebProvider(r), nil
}

func isMiniAppContext(r *http.Request, p AuthPayload) bool {
	if p.MiniApp || p.Fid > 0 {
		return true
	}
	if r == nil {
		return false
	}
	if r.URL.Query().Get("miniApp") == "true" {
		return true
	}
	if strings.Contains(r.URL.Path, "/miniapp") {
		return true
	}
	// Frame embeds announce themselves via fetch metadata.
	return r.Header.Get("Sec-Fetch-Dest") == "iframe"
}

// ParseReferral decodes a referral parameter ("ref_42" or "42") into a user
// id. Non-numeric or self-referential values normalize to no referral.
func ParseReferral(param string, selfID int64) (int64, bool) {
	param = strings.TrimPrefix(strings.TrimSpace(param), "ref_")
	if param == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 || id == selfID {
		return 0, false
	}
	return id, true
}

func refQuery(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.URL.Query().Get("ref")
}

func gameURL(botUsername, shortName string) string {
	return "https://t.me/" + url.PathEscape(botUsername) + "/" + url.PathEscape(shortName)
}
