// Package domain contains the business entities of the post generator: users,
// their profiles and generation quotas, saved post drafts and the log of
// generation calls. It has no knowledge of storage or transport.
package domain
