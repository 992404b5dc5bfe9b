package metatags

import "strings"

// crawlerTokens are lower-case substrings found in the User-Agent of link
// preview and search crawlers. Real UA strings embed them amid version info,
// so matching is by substring.
var crawlerTokens = []string{
	"linkedinbot",
	"facebookexternalhit",
	"facebot",
	"twitterbot",
	"slackbot",
	"slack-imgproxy",
	"whatsapp",
	"discordbot",
	"telegrambot",
	"skypeuripreview",
	"pinterest",
	"redditbot",
	"applebot",
	"embedly",
	"googlebot",
	"google-inspectiontool",
	"bingbot",
	"duckduckbot",
	"yandexbot",
	"baiduspider",
}

// IsCrawler reports whether userAgent belongs to a known social or search
// crawler. Matching is case-insensitive. An empty agent is not a crawler.
func IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, tok := range crawlerTokens {
		if strings.Contains(ua, tok) {
			return true
		}
	}
	return false
}
