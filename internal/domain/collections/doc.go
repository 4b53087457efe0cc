// Package collections models financed-sale installments (cuotas), the payment
// alerts derived from them, and the read aggregates used by the collections desk.
//
// Every status shown to a user comes from Classify. Persisted statuses are a
// cache refreshed by the alert scan and are never trusted over it.
package collections
