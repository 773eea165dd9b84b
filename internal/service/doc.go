// Package service contains the application use cases. It orchestrates the
// generation core, content acquisition, quota accounting and persistence
// behind interfaces from internal/store, and never depends on a concrete
// storage or provider implementation.
//
// ContentService runs the three generation operations for an authenticated
// user: it resolves the provider credential, meters generate and tune
// calls against the monthly quota, saves drafts and records every call.
// ProfileService and UserService manage the account around it.
package service
