// Package service contains the application use cases. It orchestrates domain
// objects and the store interfaces (defined in internal/store) to fulfill the
// API's features.
//
// Key components:
//
//   - TaskService: owner-scoped task creation, filtered listing, retrieval,
//     partial update, deletion and statistics.
//   - UserService: registration, credential checks and profile updates.
//
// Services receive their dependencies through constructor injection and open
// transactions through store.TxRunner, so they never depend on a concrete
// database. Store errors are translated into the sentinels the API layer maps
// to status codes.
package service
