// Package auth signs the user in against an OpenID Connect provider and keeps the session fresh.
//
// [Provider] runs the authorization code flow with PKCE through a loopback redirect, stores the resulting
// tokens in a [TokenStore], and renews them with the refresh-token grant. It satisfies the session
// interface of the API client, so an expired access token is renewed without user interaction.
//
// When an issuer is configured the provider endpoints come from discovery and ID tokens are verified;
// otherwise explicit authorization and token URLs are used.
package auth
