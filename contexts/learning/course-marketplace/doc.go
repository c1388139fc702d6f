// Package coursemarketplace contains the academy course marketplace: a course
// registry, a user registry, a transaction ledger, and the purchase workflow
// that ties them to an external payment collaborator.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package coursemarketplace
