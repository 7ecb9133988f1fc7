// Package cli implements the canopyctl command line tool.
//
// # Overview
//
// canopyctl works on tenant configuration documents offline, without a
// running server: validate checks a document strictly and prints its
// line-numbered issues, render prints the scaffold document a new tenant
// would receive, and resolve shows the fully merged configuration a document
// produces.
//
// # Related Packages
//
//   - pkg/tenantconf: the parser, validator, and merge rules the commands run
package cli
