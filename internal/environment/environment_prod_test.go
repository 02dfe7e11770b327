//go:build prod

package environment

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentProductionRecord(t *testing.T) {
	env := Current()
	assert.Equal(t, "production", BuildMode)
	assert.True(t, env.Production)
	assert.Equal(t, "PgQemCm78Kb93Jo6flJjYaIynILVdP0i", env.Auth.ClientID)
	assert.Equal(t, "olimboy.us", env.Auth.DomainPrefix)
	assert.Equal(t, "coffee_shop", env.Auth.Audience)
	require.NoError(t, env.Validate())

	for _, raw := range []string{env.APIServerURL, env.Auth.CallbackURL} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "https", u.Scheme, raw)
	}

	address, err := env.ListenAddress()
	require.NoError(t, err)
	assert.Equal(t, "api.coffeeshop.olimboy.us:443", address)
}
