/*
Package storefrontsdk provides a client SDK for the storefront management API:
product catalogue CRUD, sale registration and the date-ranged sales report.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: Provides unauthenticated operations (login, register, refresh) and creates sessions
  - Session: Provides authenticated operations and owns the persisted tokens

Create an SDKClient and authenticate to obtain a Session:

	client := storefrontsdk.NewSDKClient("https://api.example.com/api",
		storefrontsdk.WithStore(st),
		storefrontsdk.WithLogger(logger),
	)

	session, err := client.AuthenticateWithPassword(ctx, "ana@example.com", "secret1")

A later process can pick the session back up from the same store:

	session, err := client.ResumeSession(ctx)
	if errors.Is(err, storefrontsdk.ErrNoSession) {
		// ask the user to login
	}

# Session Persistence

The session is kept in a key-value store under three keys:

  - auth_token: the access token
  - refresh_token: the refresh token
  - user: the JSON encoded UserProfile

All three are written together under the session lock by Save and removed
together by Clear. At most one session exists per store and the last write
wins.

# Token Refresh

Every Session request carries the access token as a bearer token. When the API
answers 401 Unauthorized with the header "Token-Expired: true" the session
refreshes once using the stored refresh token and replays the original request
once with the new access token. Whatever the replay returns is final, so a
server that keeps answering "expired" cannot cause a loop.

If the refresh cannot be performed (no refresh token, transport failure or a
rejected refresh) the session is cleared and the call fails with
ErrSessionExpired. Callers should send the user back to login.

Concurrent requests that all see an expired token share one refresh call. A
request whose token was already replaced by another request's refresh skips
the refresh and replays with the current token.

A 401 without the expiry header is returned to the caller untouched.

# Error Handling

Non-2xx responses become *APIError carrying the status code and the server's
"message" field, or a per-operation fallback message when the body has none:

	_, err := session.CreateSale(ctx, req)
	var apiErr *storefrontsdk.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.StatusCode, apiErr.Message)
	}

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package storefrontsdk
