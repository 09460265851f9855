// Package usecases implements the backend for a role-based use-case
// management system: account registration with email activation, JWT
// login, role-gated CRUD over use cases, and an append-only edit
// history written transactionally alongside every update.
//
// Roles:
//   - Accounts carry one of three roles (admin, editor, visualizador).
//     Registration always starts at visualizador; only an admin can
//     promote or demote afterwards.
//   - Editors may mutate only use cases they created. Admins bypass the
//     ownership check and are the only role allowed to delete or to read
//     the edit history.
//
// History:
//   - Every successful use-case update appends one UseCaseHistory row
//     capturing the pre-update field values. The snapshot insert and the
//     field overwrite run in a single transaction so neither applies
//     without the other.
package usecases
