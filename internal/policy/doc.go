// Package policy implements the authorization engine for the application.
//
// Two evaluation strategies coexist, mirroring how capabilities are checked
// throughout the console:
//
//   - Slug lookup: a capability is a permission slug (e.g. "deploy-approve").
//     The engine resolves the acting user's role and allows the action iff the
//     role holds the slug in the role-permission grant map. This path is data
//     driven; new roles and permissions need no code change.
//
//   - Named rules: a capability is a (Resource, Action) pair evaluated against
//     a fixed dispatch table plus a self-access override. The client resource
//     is admin-only for every action; the users resource allows admins and
//     developers to view and create, while update additionally permits a user
//     editing their own record.
//
// The engine is an explicitly constructed instance holding the grant map
// loaded once at startup; there is no process-wide ability registry. A user
// without an assigned role is denied on both paths.
//
// Denial is reported as ErrDenied, distinct from data-layer errors, so
// callers can present "permission denied" separately from "record not found".
package policy
