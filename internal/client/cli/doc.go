// Package cli provides the interactive PetVault command-line client.
//
// It wires configuration, the local store, the sync engine, and an
// interactive REPL that keeps working with or without connectivity.
// Typical flow: restore or prompt for a session, start the background
// sync scheduler, and execute user commands against the local store.
//
// Key features:
//   - Register / Login / Logout (fully local, no network required)
//   - Add / List / Show / Edit / Delete pet records
//   - Manual sync and sync status display
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
