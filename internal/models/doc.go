// Package models defines the data shapes exchanged with the holiday-manager API.
//
// The package contains three groups of types:
//
// 1. Closed enumerations decoded at the API boundary
//   - [Role] : ROLE_ADMIN or ROLE_WORKER, parsed with [ParseRole]
//   - [Status] : REJECTED, ACCEPTED or PROCESSING, parsed with [ParseStatus]
//
// 2. Response DTOs
//   - [User] : account details returned by the user endpoints
//   - [Holiday] : a holiday request and its review status
//
// 3. Request DTOs
//   - [Credentials], [CreateUser], [UpdateUser], [UserFilter]
//   - [CreateHoliday], [HolidayFilter]
//   - [ChangePassword], [NewEmail], [NewPassword], [Email], [ActivationToken]
//
// Timestamps use [LocalDateTime], which encodes the server's zone-less ISO-8601 format.
package models
