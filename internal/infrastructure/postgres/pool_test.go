package postgres

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	ips []net.IP
	err error
}

func (r stubResolver) LookupIP(context.Context, string, string) ([]net.IP, error) {
	return r.ips, r.err
}

func TestFirstIPv4(t *testing.T) {
	ctx := context.Background()

	ip, err := firstIPv4(ctx, stubResolver{}, "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", ip)

	_, err = firstIPv4(ctx, stubResolver{}, "::1")
	assert.Error(t, err)

	ip, err = firstIPv4(ctx, stubResolver{ips: []net.IP{net.ParseIP("2001:db8::1"), net.ParseIP("192.0.2.7")}}, "db.internal")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7", ip)

	_, err = firstIPv4(ctx, stubResolver{ips: []net.IP{net.ParseIP("2001:db8::1")}}, "db.internal")
	assert.Error(t, err)

	_, err = firstIPv4(ctx, stubResolver{err: errors.New("nxdomain")}, "db.internal")
	assert.Error(t, err)
}
