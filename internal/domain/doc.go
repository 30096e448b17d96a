// Package domain contains the users and tasks the API manages, the query
// and patch types that describe operations on them, and the validation
// rules and errors shared by every layer. It has no knowledge of HTTP or
// storage.
package domain
