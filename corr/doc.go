// Package corr provides scoped correlation context for log enrichment.
//
// A Store carries correlation and transaction identifiers (plus arbitrary
// user keys) through nested execution scopes. Scopes are opened with Run and
// travel with the context.Context, so values set inside a scope are visible
// to everything the scope calls, invisible to siblings, and discarded when
// the scope returns.
package corr
