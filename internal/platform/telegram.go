package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

type telegramProvider struct {
	user       *User
	startParam string
}

func (p *telegramProvider) Platform() Platform    { return Telegram }
func (p *telegramProvider) User() *User           { return p.user }
func (p *telegramProvider) ReferralParam() string { return p.startParam }

func (p *telegramProvider) ShareLink(botUsername, shortName string, userID int64) string {
	return gameURL(botUsername, shortName) + "?startapp=ref_" + strconv.FormatInt(userID, 10)
}

// ValidateInitData verifies the WebApp init_data HMAC against the bot token,
// rejects payloads older than an hour, and extracts the embedded user plus
// the start_param used for referral deep links.
func ValidateInitData(initData, botToken string) (*User, string, bool) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, "", false
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, "", false
	}
	values.Del("hash")

	var pairs []string
	for k, v := range values {
		pairs = append(pairs, k+"="+strings.Join(v, ""))
	}
	sort.Strings(pairs)

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))

	provided, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(mac.Sum(nil), provided) {
		return nil, "", false
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, "", false
	}
	now := time.Now().Unix()
	// tolerate small clock skew, reject anything older than an hour
	if now-authDate > 3600 || authDate-now > 300 {
		return nil, "", false
	}

	var tgUser struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		PhotoURL  string `json:"photo_url"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &tgUser); err != nil || tgUser.ID == 0 {
		return nil, "", false
	}

	username := tgUser.Username
	if username == "" {
		username = tgUser.FirstName
	}
	if username == "" {
		username = "user_" + strconv.FormatInt(tgUser.ID, 10)
	}

	return &User{ID: tgUser.ID, Username: username, PhotoURL: tgUser.PhotoURL}, values.Get("start_param"), true
}
