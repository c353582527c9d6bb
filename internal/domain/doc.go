// Package domain defines the core business entities of the receipt API
// (users, business profiles, receipts, invoices and challenges) together
// with their validation rules and domain errors. It has no dependencies on
// storage or transport.
package domain
