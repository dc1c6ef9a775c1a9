package netutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrivateIP(t *testing.T) {
	cases := map[string]bool{
		"10.1.2.3":        true,
		"192.168.0.10":    true,
		"172.16.5.4":      true,
		"127.0.0.1":       true,
		"::1":             true,
		"fd00::1":         true,
		"::ffff:10.0.0.1": true,
		"8.8.8.8":         false,
		"2001:4860::8888": false,
		"":                false,
		"not-an-ip":       false,
	}
	for ip, want := range cases {
		assert.Equal(t, want, IsPrivateIP(ip), ip)
		// second call is served from the cache
		assert.Equal(t, want, IsPrivateIP(ip), ip)
	}
}

func TestFirstForwarded(t *testing.T) {
	assert.Equal(t, "1.2.3.4", FirstForwarded(" 1.2.3.4, 10.0.0.1"))
	assert.Equal(t, "", FirstForwarded(""))
}
