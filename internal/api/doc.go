// Package api provides the session-authenticated client for the Quip backend.
//
// The backend protects state-changing requests with a per-session anti-forgery
// token and carries the session itself in a cookie. The client handles both
// transparently:
//   - A single-slot token cache holds the current anti-forgery token; mutating
//     requests fetch it on demand and attach it as X-CSRF-Token.
//   - Failures are classified: 401 responses become *AuthenticationError, token
//     rejections and connection failures become *ServerRestartError, everything
//     else becomes *APIError with the server's message preserved verbatim.
//   - Authentication failures are retried once (configurable) after invalidating
//     the token cache, so an expired token heals without caller involvement.
//   - Classified failures are broadcast on a signal hub so the application can
//     react (prompt for login, show a restart notice) away from the call site.
//
// # Basic Use
//
// Construct a client, log in, and call resource services:
//
//	client, err := api.NewClient("http://localhost:3000")
//	if err != nil { ... }
//	user, err := client.Auth.Login(ctx, username, password)
//	quotes, err := client.Quotes.List(ctx)
//
// # Signals
//
// Subscribe to re-authentication signals:
//
//	events, cancel := hub.Subscribe()
//	defer cancel()
//	for ev := range events {
//		// ev.Signal is SignalAuthRequired or SignalServerRestarted
//	}
//
// # Bearer Mode
//
// With WithAPIToken the client authenticates with a static bearer token and
// skips the cookie/anti-forgery flow entirely:
//
//	client, err := api.NewClient(baseURL, api.WithAPIToken(token))
package api
