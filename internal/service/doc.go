// Package service holds the use cases behind the HTTP handlers: account
// registration and login, the business profile, receipt and invoice
// issuance, and the public dispute flow.
//
// Services depend on the store interfaces rather than on Postgres directly.
// Operations that touch more than one store run inside a single transaction
// through a store.Transactor. Failures are returned as sentinel errors from
// this package or wrapped in a ServiceError so the api package can map them
// to status codes.
package service
