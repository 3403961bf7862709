package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/skratchdot/open-golang/open"

	"github.com/evetools/esi-cli/internal/output"
)

const loginTimeout = 5 * time.Minute

// LoginOptions configures the interactive login flow.
type LoginOptions struct {
	// NoBrowser prints the authorization URL instead of opening a browser.
	NoBrowser bool
	// Manual skips the local callback server; the user pastes the full
	// callback URL on stdin. Required when the redirect URI is not local.
	Manual bool
	// Input is where the manual flow reads the pasted URL (defaults to stdin).
	Input io.Reader
	// Logf receives human-facing progress lines (defaults to stdout).
	Logf func(format string, args ...any)
}

// Login runs the full authorization-code flow: authorization URL, callback
// capture, code exchange, token persistence.
func (m *Manager) Login(ctx context.Context, opts LoginOptions) (*TokenRecord, error) {
	if opts.Logf == nil {
		opts.Logf = func(format string, args ...any) { fmt.Printf(format+"\n", args...) }
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	authURL, session, err := m.AuthorizeURL()
	if err != nil {
		return nil, err
	}

	if opts.Manual {
		return m.loginManual(ctx, authURL, session, opts)
	}
	return m.loginCallback(ctx, authURL, session, opts)
}

// loginManual prints the URL and waits for the user to paste the callback.
func (m *Manager) loginManual(ctx context.Context, authURL string, session *Session, opts LoginOptions) (*TokenRecord, error) {
	opts.Logf("Visit this URL to authorize the application:\n\n%s\n", authURL)
	opts.Logf("Paste the full callback URL after authorizing:")

	scanner := bufio.NewScanner(opts.Input)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, output.ErrCallback("No callback URL provided")
	}
	callbackURL := strings.TrimSpace(scanner.Text())
	return m.HandleCallback(ctx, callbackURL, session)
}

// loginCallback serves the redirect URI locally and captures the callback.
func (m *Manager) loginCallback(ctx context.Context, authURL string, session *Session, opts LoginOptions) (*TokenRecord, error) {
	redirect, err := url.Parse(m.cfg.RedirectURI)
	if err != nil {
		return nil, output.ErrUsageHint("Invalid redirect URI", err.Error())
	}
	host := redirect.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return nil, output.ErrUsageHint(
			"Redirect URI is not local",
			"Use --manual and paste the callback URL by hand",
		)
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("start callback server on %s: %w", redirect.Host, err)
	}
	defer func() { _ = listener.Close() }()

	callbackCh := make(chan string, 1)
	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if redirect.Path != "" && r.URL.Path != redirect.Path {
				http.NotFound(w, r)
				return
			}
			select {
			case callbackCh <- r.URL.String():
			default: // a callback is already in flight
			}
			fmt.Fprint(w, "<html><body><h1>Authentication complete</h1><p>You can close this window and return to the terminal.</p></body></html>")
		}),
	}
	go func() { _ = server.Serve(listener) }()
	defer func() { _ = server.Close() }()

	if opts.NoBrowser {
		opts.Logf("Open this URL in your browser:\n\n%s\n\nWaiting for authorization...", authURL)
	} else if err := open.Start(authURL); err != nil {
		opts.Logf("Couldn't open a browser automatically.\nOpen this URL instead:\n\n%s\n\nWaiting for authorization...", authURL)
	} else {
		opts.Logf("Opening browser for EVE Online SSO...\nIf nothing happens, visit: %s\n\nWaiting for authorization...", authURL)
	}

	select {
	case callbackURL := <-callbackCh:
		return m.HandleCallback(ctx, callbackURL, session)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(loginTimeout):
		return nil, output.ErrCallback("Timed out waiting for authorization")
	}
}
