package share

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcine/web-ui/models"
)

func TestBuildArtifacts(t *testing.T) {
	tt := &models.Title{
		TitleID:     "42",
		Title:       "Shadow & Light",
		Description: strings.Repeat("a", 120),
	}

	a := BuildArtifacts("https://netcine.app/", "NETCINE", tt)

	assert.Equal(t, "https://netcine.app/watch/42", a.URL)
	assert.Equal(t, `Check out "Shadow & Light" on NETCINE! `+strings.Repeat("a", 100)+"...", a.Text)
	require.Len(t, a.Intents, 3)

	fb, ok := a.Intent(ChannelFacebook)
	require.True(t, ok)
	assert.Equal(t, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fnetcine.app%2Fwatch%2F42", fb)

	tw, ok := a.Intent(ChannelTwitter)
	require.True(t, ok)
	u, err := url.Parse(tw)
	require.NoError(t, err)
	assert.Equal(t, "twitter.com", u.Host)
	assert.Equal(t, a.Text, u.Query().Get("text"))
	assert.Equal(t, a.URL, u.Query().Get("url"))
	assert.NotContains(t, tw, "+")

	mail, ok := a.Intent(ChannelEmail)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(mail, "mailto:?subject=Check%20out%20Shadow%20%26%20Light&body="))
	m, err := url.Parse(mail)
	require.NoError(t, err)
	assert.Equal(t, a.Text+"\n\n"+a.URL, m.Query().Get("body"))
}

func TestBuildArtifacts_IsDeterministic(t *testing.T) {
	tt := &models.Title{TitleID: "1", Title: "One", Description: "Short"}

	assert.Equal(t, BuildArtifacts("https://netcine.app", "NETCINE", tt), BuildArtifacts("https://netcine.app", "NETCINE", tt))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 100))
	assert.Equal(t, "héllo", excerpt("héllo wörld", 5))
}

func TestChannel_Valid(t *testing.T) {
	assert.True(t, ChannelTwitter.Valid())
	assert.False(t, Channel("myspace").Valid())
}
