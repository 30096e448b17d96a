// Package mocks provides shared test doubles for the store, auth and
// transaction interfaces.
//
// Two styles are available. Function-field mocks (MockJWTService,
// MockPasswordVerifier, MockRevocationStore) let a test override a single
// method. The in-memory stores (MockUserStore, MockTaskStore) behave like the
// Postgres implementations, including owner scoping and sentinel errors, so
// service and handler tests can run end to end without a database.
//
// Usage:
//
//	import "github.com/phrazzld/taskboard-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    tasks := mocks.NewMockTaskStore()
//	    svc, _ := service.NewTaskService(tasks, &mocks.NoopTxRunner{}, nil)
//
//	    // Use the service in your test...
//	}
//
// TestifyMockUserStore is the testify/mock flavor for tests that assert on
// exact call arguments.
package mocks
