// Package flows orchestrates the login and logout transitions.
//
// [Auth.Login] signs in, resolves the user's role and only then publishes an authenticated session
// and navigates to the role's landing view. [Auth.Logout] always ends signed out: the server call is
// best-effort, while the session, the credential cookies and the current view are reset regardless.
package flows
