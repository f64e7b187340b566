package server_test

import (
	"encoding/hex"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/andrei-cloud/anet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_arv/internal/provision"
	"github.com/andrei-cloud/go_arv/internal/server"
	"github.com/andrei-cloud/go_arv/pkg/arv"
)

const (
	testAddr       = "127.0.0.1:1601"
	testPolicyAddr = "127.0.0.1:1602"
	testSwapAddr   = "127.0.0.1:1603"
)

// startTestServer starts a server and stops it when the test ends.
func startTestServer(t *testing.T, addr string, policy *provision.Policy) *server.Server {
	t.Helper()

	srv, err := server.NewServer(addr, policy)
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		require.NoError(t, err, "server start")
	case <-time.After(1 * time.Second):
		// Allow some time for the server to start
	}
	time.Sleep(100 * time.Millisecond)

	t.Cleanup(func() { _ = srv.Stop() })

	return srv
}

// newClient returns a send function. Each request goes through its own
// single-connection anet pool and broker, which are closed afterwards.
func newClient(t *testing.T, addr string) func(string) string {
	t.Helper()

	factory := func(addr string) (anet.PoolItem, error) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(time.Now().Add(2 * time.Second)); err != nil {
			conn.Close()

			return nil, err
		}

		return conn, nil
	}

	return func(req string) string {
		t.Helper()

		pool := anet.NewPool(1, factory, addr, nil)
		defer pool.Close()

		broker := anet.NewBroker([]anet.Pool{pool}, 1, nil, nil)
		go broker.Start()
		defer broker.Close()

		b := []byte(req)
		resp, err := broker.Send(&b)
		require.NoError(t, err, "request %s", req)

		return string(resp)
	}
}

func testPolicy(t *testing.T) *provision.Policy {
	t.Helper()
	p, err := provision.Parse([]byte(`registers:
  sr1: {value: 0x80, mask: 0x80}
`), provision.FormatYAML)
	require.NoError(t, err)

	return p
}

func TestCommands(t *testing.T) {
	startTestServer(t, testAddr, nil)
	send := newClient(t, testAddr)

	img := provision.Image([3]arv.WriteProtectDescriptor{
		arv.NewWriteProtectDescriptor(0x80, 0x80),
		arv.NewWriteProtectDescriptor(0, 0),
		arv.NewWriteProtectDescriptor(0, 0),
	})
	imgHex := strings.ToUpper(hex.EncodeToString(img[:]))

	resp := send("EX0D000000")
	assert.Equal(t, "EY00", resp[:4])
	assert.Contains(t, resp, "Top level code: TooBig (13)")

	resp = send("EX0a010000")
	assert.Equal(t, "EY00", resp[:4])
	assert.Contains(t, resp, "Version mismatch source: Gscvd")

	assert.Equal(t, "EY12", send("EX13000000"))
	assert.Equal(t, "EY51", send("EX0D"))
	assert.Equal(t, "EY11", send("EX0D00000G"))

	assert.Equal(t, "TT00Success (OK)", send("TS14"))
	assert.Equal(t, "TT00SpiRead (spi err)", send("TS19"))
	assert.Equal(t, "TT12", send("TS22"))

	assert.Equal(t, "WQ00FFFFF000", send("WP"+imgHex+"9C1234"))
	assert.Equal(t, "WQ00021C8080", send("WP"+imgHex+"1C0000"))
	assert.Equal(t, "WQ20", send("WP9C1234"))

	assert.Equal(t, "ZA68", send("ZZ0123"))
}

func TestWriteProtectAgainstServerPolicy(t *testing.T) {
	startTestServer(t, testPolicyAddr, testPolicy(t))
	send := newClient(t, testPolicyAddr)

	assert.Equal(t, "WQ00FFFFF000", send("WP800000"))
	assert.Equal(t, "WQ0002008080", send("WP000000"))
	// SR2 and SR3 are not in the policy and accept any value.
	assert.Equal(t, "WQ00FFFFF000", send("WP80FFFF"))
	assert.Equal(t, "WQ00FFFFF000", send("WPFF1234"))
}

func TestWriteProtectPolicySwap(t *testing.T) {
	srv := startTestServer(t, testSwapAddr, testPolicy(t))
	send := newClient(t, testSwapAddr)

	assert.Equal(t, "WQ00FFFFF000", send("WP800000"))

	srv.SetPolicy(nil)
	assert.Equal(t, "WQ20", send("WP800000"))

	strict, err := provision.Parse([]byte("registers:\n  sr2: {value: 0x02, mask: 0x02}\n"), provision.FormatYAML)
	require.NoError(t, err)
	srv.SetPolicy(strict)
	assert.Equal(t, "WQ0003000202", send("WP800000"))
}
