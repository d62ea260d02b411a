/*
Package accountsdk is the Go client for the accounts service, and the home of
the request, response and error types the server writes.

# Client vs Session

Client covers the endpoints that need no token: registering, browsing users,
requesting a TOTP enrollment QR code and logging in.

	client := accountsdk.NewClient("https://accounts.example.com")

	_, err := client.CreateUser(ctx, accountsdk.CreateUserRequest{
		Username:  "alice",
		Password1: "s3cret-pass!",
		Password2: "s3cret-pass!",
		Email:     "alice@example.com",
	})

	png, err := client.TOTPQRCode(ctx, "alice", "s3cret-pass!")

Login returns a Session. A Session holds the access and refresh tokens and
transparently calls /api/v1/auth/refresh when the access token has expired,
picking up a rotated refresh token when the server issues one.

	session, err := client.Login(ctx, "alice", "s3cret-pass!", code)
	me, err := session.UserInfo(ctx)
	err = session.UpdateUser(ctx, "alice", accountsdk.UpdateUserRequest{Email: ptr("new@example.com")})

# Errors

Failed calls return *APIError. Compare with errors.Is against the predefined
values, which match on the error code:

	if errors.Is(err, accountsdk.ErrInvalidCredentials) { ... }

Validation failures return *ValidationError with per-field details.
*/
package accountsdk
