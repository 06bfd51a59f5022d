// AngelaMos | 2026
// mailer_test.go

package email

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/reviewdb/internal/config"
)

func TestSendTimesOutOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// Accept the connection but never speak SMTP, so the client blocks
	// waiting for the greeting until its deadline fires.
	hold := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		<-hold
		conn.Close()
	}()
	defer close(hold)

	mailer := NewSMTPMailer(config.EmailConfig{
		Host:        "127.0.0.1",
		Port:        ln.Addr().(*net.TCPAddr).Port,
		From:        "noreply@reviewdb.local",
		SendTimeout: 200 * time.Millisecond,
	})

	start := time.Now()
	err = mailer.Send(
		context.Background(),
		"user@example.com",
		"subject",
		"body",
	)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSendFailsFastOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mailer := NewSMTPMailer(config.EmailConfig{
		Host:        "127.0.0.1",
		Port:        9,
		From:        "noreply@reviewdb.local",
		SendTimeout: 5 * time.Second,
	})

	err := mailer.Send(ctx, "user@example.com", "subject", "body")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
