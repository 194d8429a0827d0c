// Package tasks runs long-running card operations with real-time progress reporting.
//
// # Bulk Import
//
// [Importer.Run] creates many cards through the API concurrently:
//   - a bounded worker group (default 4, at most 10 workers)
//   - a shared rate limiter (default 5 requests per second)
//   - a per-card [ImportResult] collected into an [ImportReport] tagged with a batch id
//
// A failed card does not stop the batch. An expired session does, since every later request would fail the same way.
//
// Input files are parsed by [ParseImportFile] from JSON (an array of card objects) or CSV (front, back, tags, deck)
// where tags are separated by semicolons.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel without blocking: updates are dropped when the channel is full.
//
// # Card Caching
//
// The optional [CardCacher] stores created cards locally (repositories.CardCacheRepository).
// Cache errors are logged and do not fail the import.
package tasks
