// Package services wraps every holiday-manager endpoint on top of the request pipeline.
//
// # API Client
//
// [APIService] builds a [pipeline.Descriptor] per endpoint, runs it through a shared [pipeline.Pipeline]
// and decodes the server's {"data": ...} envelope into [models] types. Credentials travel as cookies in
// the pipeline's HTTP client jar, so callers never handle tokens.
//
// # Interfaces
//
// Consumers depend on the narrow interfaces in this package rather than on [APIService]:
//   - [AuthAPI] : login, logout and role lookup used by the auth flows
//   - [HolidayAPI] : holiday requests, listings and reviews
//   - [UserAPI] : registration, activation and admin user management
//   - [AccountAPI] : profile, email and password changes for the signed-in user
//
// # Error Handling
//
// Pipeline failures are returned as-is ([*pipeline.Failure] matches the shared sentinels):
//   - [shared.ErrNetwork] : transport failure or undecodable payload
//   - [shared.ErrAPIRequest] : the server rejected the call
//   - [shared.ErrNotAuthenticated] : credentials expired and could not be refreshed
//
// A success without the expected data is reported as [shared.ErrEmptyResponse].
package services
