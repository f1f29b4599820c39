// Package state persists builder option settings.
//
// A Store is a flat string key/value store, the shape IDE settings services
// expose. Settings adapts a Store to the boolean settings contract used by
// selection sessions, and Resolver layers persisted values over catalogue
// defaults so the generator can trace where each value came from.
//
// Data flow:
//
//	Session -> Settings -> Store (MemoryStore | FileStore)
//	Store -> Settings -> Resolver -> builderopts.Options[map[string]any]
package state
