package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/atotto/clipboard"

	"github.com/kengakuru/kibanda/internal/browser"
)

// DefaultTimeout is how long Loopback waits for the provider redirect.
const DefaultTimeout = 2 * time.Minute

// Loopback receives the provider redirect on a local HTTP listener bound to
// the redirect URL's host and port.
type Loopback struct {
	// Open opens the authorization URL. Defaults to browser.Open.
	Open func(string) error
	// Copy puts the authorization URL on the clipboard when Open fails.
	// Defaults to clipboard.WriteAll.
	Copy func(string) error
	// Out receives a notice with the URL when Open fails. Nil discards it.
	Out io.Writer
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
}

// NewLoopback returns a Loopback that writes fallback notices to out.
func NewLoopback(out io.Writer) *Loopback {
	return &Loopback{Out: out}
}

type callback struct {
	res Result
	err error
}

// OpenAuthSession opens authURL and waits for the redirect to redirectURL.
// The wait ends with Dismiss after the timeout and with Cancel when the user
// denies access at the provider.
func (l *Loopback) OpenAuthSession(ctx context.Context, authURL, redirectURL string) (Result, error) {
	redirect, err := url.Parse(redirectURL)
	if err != nil {
		return Result{}, fmt.Errorf("oauth.OpenAuthSession: parse redirect: %w", err)
	}
	if redirect.Scheme != "http" || redirect.Port() == "" {
		return Result{}, fmt.Errorf("oauth.OpenAuthSession: redirect %q must be http with an explicit port", redirectURL)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return Result{}, fmt.Errorf("oauth.OpenAuthSession: start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	resultCh := make(chan callback, 1)
	deliver := func(cb callback) {
		select {
		case resultCh <- cb:
		default:
		}
	}

	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if len(q) == 0 {
			// Implicit grants put the tokens in the fragment, which never
			// reaches the server. The page sends them back as a query.
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, relayHTML) //nolint:errcheck
			return
		}

		got := *redirect
		got.RawQuery = r.URL.RawQuery
		got.Fragment = ""

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch q.Get("error") {
		case "":
			fmt.Fprint(w, doneHTML) //nolint:errcheck
			deliver(callback{res: Result{Type: Success, URL: &got}})
		case "access_denied":
			fmt.Fprint(w, cancelledHTML) //nolint:errcheck
			deliver(callback{res: Result{Type: Cancel}})
		default:
			fmt.Fprint(w, cancelledHTML) //nolint:errcheck
			deliver(callback{res: Result{Type: Success, URL: &got}})
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			deliver(callback{err: srvErr})
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	if err := l.open(authURL); err != nil {
		l.fallback(authURL)
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case cb := <-resultCh:
		if cb.err != nil {
			return Result{}, fmt.Errorf("oauth.OpenAuthSession: callback server: %w", cb.err)
		}
		return cb.res, nil
	case <-timer.C:
		return Result{Type: Dismiss}, nil
	case <-ctx.Done():
		return Result{Type: Dismiss}, ctx.Err()
	}
}

func (l *Loopback) open(u string) error {
	if l.Open != nil {
		return l.Open(u)
	}
	return browser.Open(u)
}

func (l *Loopback) fallback(u string) {
	copyFn := l.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	copied := copyFn(u) == nil
	if l.Out == nil {
		return
	}
	fmt.Fprintf(l.Out, "Could not open browser. Visit this URL manually:\n  %s\n", u) //nolint:errcheck
	if copied {
		fmt.Fprintln(l.Out, "(copied to clipboard)") //nolint:errcheck
	}
}

const relayHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Kibanda</title></head>
<body>
<p id="msg">Finishing sign-in&hellip;</p>
<script>
if (location.hash.length > 1) {
  location.replace(location.pathname + "?" + location.hash.substring(1));
} else {
  location.replace(location.pathname + "?error=missing_grant&error_description=" +
    encodeURIComponent("The provider returned no credentials."));
}
</script>
</body>
</html>`

const doneHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Kibanda</title></head>
<body style="font-family:monospace;background:#101010;color:#f0e6d2;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1 style="color:#f5a623">KIBANDA</h1>
<p>Signed in. You can close this tab and return to your terminal.</p>
</div>
</body>
</html>`

const cancelledHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Kibanda</title></head>
<body style="font-family:monospace;background:#101010;color:#f0e6d2;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1 style="color:#f5a623">KIBANDA</h1>
<p>Sign-in was not completed. You can close this tab.</p>
</div>
</body>
</html>`
