package lookup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"mailproof/internal/models"
	"mailproof/internal/proxy"
)

// DefaultProbeTimeout bounds one whole probe dialogue. A peer that
// stalls at any state still yields a result within this window.
const DefaultProbeTimeout = 10 * time.Second

// Prevents the host IP from being flagged by large providers for
// opening too many concurrent connections.
var probeSemaphore = make(chan struct{}, 15)

// Prober speaks a partial SMTP dialogue with a mail exchanger to test
// whether it would accept the recipient, without delivering anything:
//
//	220 greeting → EHLO → 250 → MAIL FROM → 250 → RCPT TO → QUIT
//
// RCPT 250/251 means the mailbox is accepted; 550-553 means rejected;
// any other response falls through to QUIT with nothing proven.
type Prober struct {
	HeloHost string
	MailFrom string
	Timeout  time.Duration

	// Port overrides the SMTP port, for tests only. Zero means 25.
	Port int

	// ProxyURL pins a SOCKS proxy for the TCP dial. When nil and SMTP
	// proxying is enabled, each probe picks the next proxy from the
	// global rotation.
	ProxyURL *url.URL
}

func NewProber(heloHost, mailFrom string) *Prober {
	return &Prober{
		HeloHost: heloHost,
		MailFrom: mailFrom,
		Timeout:  DefaultProbeTimeout,
	}
}

func (p *Prober) Probe(ctx context.Context, email, mxHost string) models.SMTPResult {
	var result models.SMTPResult

	select {
	case probeSemaphore <- struct{}{}:
	case <-ctx.Done():
		result.Error = ctx.Err().Error()
		return result
	}
	defer func() { <-probeSemaphore }()

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	port := p.Port
	if port == 0 {
		port = 25
	}
	addr := net.JoinHostPort(mxHost, strconv.Itoa(port))

	pURL := p.ProxyURL
	if pURL == nil && proxy.SMTPEnabled {
		pURL = proxy.Global.Next()
	}

	var conn net.Conn
	var err error
	if pURL != nil {
		conn, err = proxy.DialContext(ctx, "tcp", addr, timeout, pURL)
	} else {
		d := net.Dialer{Timeout: timeout}
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		result.Error = probeError("connection failed", err)
		return result
	}

	result.CanConnect = true

	// One unconditional deadline covers the whole dialogue, bounded by
	// the caller's context deadline when that is sooner.
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetDeadline(deadline)

	tp := textproto.NewConn(conn)
	defer tp.Close()

	if code, msg, err := tp.ReadResponse(220); err != nil {
		result.Response = respLine(code, msg, err)
		result.Error = probeError("banner not received", err)
		return result
	} else {
		result.Response = respLine(code, msg, nil)
	}

	if !p.command(tp, &result, "EHLO rejected", "EHLO %s", p.HeloHost) {
		return result
	}

	if !p.command(tp, &result, "MAIL FROM rejected", "MAIL FROM:<%s>", p.MailFrom) {
		return result
	}

	if _, err := tp.Cmd("RCPT TO:<%s>", email); err != nil {
		result.Error = probeError("RCPT TO failed", err)
		return result
	}

	code, msg, err := tp.ReadResponse(0)
	if err != nil {
		result.Response = respLine(code, msg, err)
		result.Error = probeError("network read error", err)
		return result
	}
	result.Response = respLine(code, msg, nil)

	switch code {
	case 250, 251:
		result.IsValid = true
		result.AcceptsRecipient = true
	case 550, 551, 552, 553:
		result.Error = "Recipient rejected by server"
	}

	tp.Cmd("QUIT")
	return result
}

// command sends one dialogue step and requires a 250 acknowledgment.
func (p *Prober) command(tp *textproto.Conn, result *models.SMTPResult, failure, format string, args ...interface{}) bool {
	if _, err := tp.Cmd(format, args...); err != nil {
		result.Error = probeError(failure, err)
		return false
	}
	code, msg, err := tp.ReadResponse(250)
	result.Response = respLine(code, msg, err)
	if err != nil {
		result.Error = probeError(failure, err)
		return false
	}
	return true
}

func respLine(code int, msg string, err error) string {
	var textErr *textproto.Error
	if err != nil && errors.As(err, &textErr) {
		return fmt.Sprintf("%d %s", textErr.Code, textErr.Msg)
	}
	if code == 0 {
		return ""
	}
	return fmt.Sprintf("%d %s", code, msg)
}

// probeError keeps the fixed timeout message distinguishable from
// protocol-level failures.
func probeError(stage string, err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "SMTP connection timeout"
	}
	return fmt.Sprintf("%s: %v", stage, err)
}
