// Package cli provides the interactive FileKeeper command-line client.
//
// It wires configuration, the local session store, the API services and a
// REPL whose commands depend on the current view:
//
//   - /login, /register: login, register
//   - / (requires a session): list, next, prev, upload, download, rename,
//     delete, whoami, logout
//   - anywhere: help, goto <login|register|home>, exit
//
// The view follows the session. Logging in moves to /, and logging out or
// having the token rejected by the server moves back to /login.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
