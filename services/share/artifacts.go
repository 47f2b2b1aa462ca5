package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
)

const excerptLength = 100

type Channel string

const (
	ChannelFacebook Channel = "facebook"
	ChannelTwitter  Channel = "twitter"
	ChannelEmail    Channel = "email"
)

var Channels = []Channel{ChannelFacebook, ChannelTwitter, ChannelEmail}

func (s Channel) Valid() bool {
	for _, c := range Channels {
		if c == s {
			return true
		}
	}
	return false
}

type Intent struct {
	Channel Channel
	URL     string
}

// Artifacts are everything the share modal needs for one title. All of it is
// derived from the title id, name and description.
type Artifacts struct {
	URL     string
	Text    string
	Intents []Intent
}

func (s *Artifacts) Intent(c Channel) (string, bool) {
	for _, i := range s.Intents {
		if i.Channel == c {
			return i.URL, true
		}
	}
	return "", false
}

func CanonicalURL(domain string, id string) string {
	return fmt.Sprintf("%v/watch/%v", common.TrimDomain(domain), url.PathEscape(id))
}

func BuildArtifacts(domain string, appName string, t *models.Title) *Artifacts {
	link := CanonicalURL(domain, t.TitleID)
	text := fmt.Sprintf("Check out \"%v\" on %v! %v...", t.Title, appName, excerpt(t.Description, excerptLength))
	return &Artifacts{
		URL:  link,
		Text: text,
		Intents: []Intent{
			{
				Channel: ChannelFacebook,
				URL:     "https://www.facebook.com/sharer/sharer.php?u=" + encodeComponent(link),
			},
			{
				Channel: ChannelTwitter,
				URL: "https://twitter.com/intent/tweet?text=" + encodeComponent(text) +
					"&url=" + encodeComponent(link),
			},
			{
				Channel: ChannelEmail,
				URL: "mailto:?subject=" + encodeComponent("Check out "+t.Title) +
					"&body=" + encodeComponent(text+"\n\n"+link),
			},
		},
	}
}

// excerpt cuts s to at most n characters.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// encodeComponent escapes s for use as a single query parameter value, spaces
// as %20 so that mail clients decode them too.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
