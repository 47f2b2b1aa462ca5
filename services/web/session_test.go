package web

import (
	"flag"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/netcine/web-ui/services/common"
)

func newCLIContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range common.RegisterFlags(nil) {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func withMode(t *testing.T, mode string) {
	t.Helper()
	prev := gin.Mode()
	gin.SetMode(mode)
	t.Cleanup(func() { gin.SetMode(prev) })
}

func TestRegisterSession_DefaultSecretWarns(t *testing.T) {
	withMode(t, gin.TestMode)
	hook := test.NewGlobal()
	defer hook.Reset()

	err := RegisterSession(newCLIContext(t), gin.New())

	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "--secret")
}

func TestRegisterSession_DefaultSecretRefusedInRelease(t *testing.T) {
	withMode(t, gin.ReleaseMode)

	err := RegisterSession(newCLIContext(t), gin.New())

	assert.Error(t, err)
}

func TestRegisterSession_CustomSecret(t *testing.T) {
	withMode(t, gin.ReleaseMode)
	hook := test.NewGlobal()
	defer hook.Reset()

	err := RegisterSession(newCLIContext(t, "--secret", "a-long-random-secret"), gin.New())

	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())
}
