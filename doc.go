// Package padsync is the composition root for the padsync application.
//
// It connects the synchronization core (Domain Layer) with the
// infrastructure adapters (Persistence and Transport Layers) using the
// Hexagonal Architecture pattern.
//
// Philosophy:
//
// padsync keeps a local vault of markdown documents and their remotely
// hosted copies on a pad host in agreement, without silently losing either
// side's edits. Sync metadata lives in each document's YAML front matter;
// conflicts are detected through optimistic concurrency against the
// recorded lastSync timestamp and surfaced, never auto-merged.
//
// Features:
//
//   - **Hexagonal Architecture**: The sync engine is isolated from storage
//     and transport details behind the core.Vault and core.Remote ports.
//   - **Front Matter Native**: Sync state is embedded in each document's
//     header; unrelated user metadata survives every merge untouched.
//   - **Optimistic Concurrency**: Push and pull run conflict checks with a
//     clock-skew tolerance margin; forced variants override one side.
//   - **Classified Errors**: Every transport failure maps to a fixed
//     taxonomy before it reaches the engine.
//
// Usage:
//
//	engine, err := padsync.New("./notes",
//		padsync.WithToken(os.Getenv("PADSYNC_ACCESS_TOKEN")),
//		padsync.WithLogger(logger),
//	)
//
//	// Push a document
//	note, err := engine.Push(ctx, "ideas.md", false)
package padsync
