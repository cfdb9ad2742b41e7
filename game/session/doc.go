// Package session keeps the live Santorini tables of a server in memory.
//
// Manager creates one engine and one turn clock per session and hands them
// out as service.Session values. Sessions use 4-character hex IDs from
// crypto/rand and are looked up case-insensitively. The manager is safe for
// concurrent use; the engine inside a session is not, and callers serialize
// access through the service layer.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// drop tables idle for more than a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
