// Package main provides the entry point for the DeployPanel administration
// console. It runs a web server using the Fiber framework through which staff
// manage clients, users, roles, hosts, application versions, and deployments.
// The application uses gorm for data persistence and a role/permission engine
// to authorize every administrative action.
package main
