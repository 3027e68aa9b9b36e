// Package pricegrid is the admin/auth core of the pricegrid catalog backend.
//
// Administrators create and maintain pricing documents (plans, exchange
// rates, referral codes) through authenticated endpoints; the public
// storefront reads them anonymously. This package owns the only stateful
// workflow in the system, the admin account lifecycle:
//
//   - Admins register (capped at MaxAdminAccounts), start unverified, and
//     must confirm their email through a one-time verification token before
//     any protected route will serve them.
//   - Sessions are signed JWTs carried in an httpOnly cookie or a bearer
//     header; see middleware/sessionware for the route guard.
//   - Password resets use a double check: the signed token must validate AND
//     match the token stored on the admin record, which is cleared on
//     consumption so a reset link works at most once.
//
// Tokens for sessions, email verification, and password resets share one
// signing secret but carry a purpose claim; every validation asserts the
// expected purpose so a captured verification token cannot be replayed as a
// session.
//
// Note on lookup policy: login failures never reveal whether an email is
// registered, while a password reset request for an unknown email returns
// not-found. That asymmetry is inherited product behavior; do not "fix" one
// side without a product decision on the other.
package pricegrid
