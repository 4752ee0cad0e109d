// Package providers groups the upstream implementations of the core
// collaborator contracts and their test kit.
package providers
