// Package paypal implements the core collaborator contracts against the PayPal
// REST and smart checkout apis.
package paypal
