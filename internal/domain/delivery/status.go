// Package delivery normalizes heterogeneous courier APIs into one internal
// order-status taxonomy and a uniform create/status contract.
package delivery

import "strings"

// Status is the provider-agnostic delivery state used throughout the system.
type Status string

const (
	StatusOrdered          Status = "ordered"
	StatusOnDelivery       Status = "on_delivery"
	StatusPaymentCollected Status = "payment_collected"
	StatusReturning        Status = "returning"
	StatusReadyToReceive   Status = "ready_to_receive"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// Provider identifies a supported courier company.
type Provider string

const (
	ProviderOptimus Provider = "optimus"
	ProviderSkynet  Provider = "skynet"
)

// statusTables maps each provider's raw status strings (lowercased) to the
// internal taxonomy. This is pure data: no other component may embed
// provider string literals.
var statusTables = map[Provider]map[string]Status{
	ProviderOptimus: {
		"pending_pickup": StatusOrdered,
		"picked_up":      StatusOnDelivery,
		"in_transit":     StatusOnDelivery,
		"delivered":      StatusPaymentCollected,
		"returning":      StatusReturning,
		"cash_ready":     StatusReadyToReceive,
		"settled":        StatusCompleted,
		"cancelled":      StatusCancelled,
	},
	ProviderSkynet: {
		"created":          StatusOrdered,
		"dispatched":       StatusOnDelivery,
		"out_for_delivery": StatusOnDelivery,
		"cod_collected":    StatusPaymentCollected,
		"return_to_sender": StatusReturning,
		"payout_pending":   StatusReadyToReceive,
		"closed":           StatusCompleted,
		"void":             StatusCancelled,
	},
}

// MapProviderStatus translates a provider's raw status into the internal
// taxonomy. Lookup is case-insensitive. An unknown raw status yields
// StatusOnDelivery: a shipment we cannot classify is assumed still in
// transit rather than silently completed or cancelled.
func MapProviderStatus(p Provider, raw string) Status {
	if table, ok := statusTables[p]; ok {
		if st, ok := table[strings.ToLower(strings.TrimSpace(raw))]; ok {
			return st
		}
	}
	return StatusOnDelivery
}
