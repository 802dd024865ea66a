// Package service contains the business logic.
//
// It sits between the console and the repository layer. It validates
// records, forwards them to the repositories and turns "absent" results
// into not-found errors, so callers only have to deal with errors.
package service
