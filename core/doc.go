// Package core resolves the order id of a smart payment button instance. It
// holds the order normalizer, the memoized resolver and the collaborator
// contracts implemented by provider and transport adapters. Core must not
// depend on those adapters.
package core
