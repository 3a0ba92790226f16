package access

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllowList(t *testing.T) {
	t.Run("valid cidrs parse", func(t *testing.T) {
		al, err := NewAllowList([]string{"10.0.0.0/8", "192.168.1.0/24"})
		require.NoError(t, err)
		assert.False(t, al.Empty())
	})

	t.Run("malformed cidr fails construction", func(t *testing.T) {
		_, err := NewAllowList([]string{"10.0.0.0/8", "bogus"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
	})

	t.Run("bare address without prefix fails", func(t *testing.T) {
		_, err := NewAllowList([]string{"10.0.0.1"})
		require.Error(t, err)
	})

	t.Run("blank entries skipped", func(t *testing.T) {
		al, err := NewAllowList([]string{"", "  ", "10.0.0.0/8"})
		require.NoError(t, err)
		assert.True(t, al.ContainsString("10.1.2.3"))
	})

	t.Run("empty list contains nothing", func(t *testing.T) {
		al, err := NewAllowList(nil)
		require.NoError(t, err)
		assert.True(t, al.Empty())
		assert.False(t, al.ContainsString("10.0.0.1"))
	})
}

func TestAllowListContains(t *testing.T) {
	tests := []struct {
		name  string
		cidrs []string
		addr  string
		want  bool
	}{
		{"inside /8", []string{"10.0.0.0/8"}, "10.255.255.255", true},
		{"outside /8", []string{"10.0.0.0/8"}, "11.0.0.0", false},
		{"inside /24", []string{"192.168.1.0/24"}, "192.168.1.200", true},
		{"adjacent /24", []string{"192.168.1.0/24"}, "192.168.2.1", false},
		{"/32 matches literal only", []string{"203.0.113.7/32"}, "203.0.113.7", true},
		{"/32 rejects neighbor", []string{"203.0.113.7/32"}, "203.0.113.8", false},
		{"/0 matches everything", []string{"0.0.0.0/0"}, "198.51.100.1", true},
		{"second range matches", []string{"10.0.0.0/8", "172.16.0.0/12"}, "172.20.0.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			al, err := NewAllowList(tt.cidrs)
			require.NoError(t, err)

			addr := netip.MustParseAddr(tt.addr)
			assert.Equal(t, tt.want, al.Contains(addr))
		})
	}
}

func TestAllowListContainsString(t *testing.T) {
	al, err := NewAllowList([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	assert.True(t, al.ContainsString("10.0.0.1"))
	assert.False(t, al.ContainsString("not-an-ip"))
	assert.False(t, al.ContainsString(""))

	// IPv4-mapped IPv6 addresses unmap to their IPv4 form.
	assert.True(t, al.ContainsString("::ffff:10.0.0.1"))
}
