// Package routing generates the static host's _redirects file and the
// auth-redirect.html page that sends auth and share links to the right
// platform variant, and parses _redirects back for verification.
package routing
