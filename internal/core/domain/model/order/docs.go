// Package order provides the Order aggregate root as seen by a delivery agent.
//
// The package includes:
//   - Order: identity, items, total, delivery target, contact and lifecycle
//   - Status: the closed lifecycle enumeration and its transition rules
//   - Item, Contact: value objects carried by an order
//
// Key business rules:
//   - An order enters the system Pending and is Accepted exactly once
//   - Status moves strictly forward: Accepted -> PickedUp -> ReachedStation|OutForDelivery -> Delivered
//   - The intermediate hand-over state is chosen by the delivery target kind
//   - Delivered requires a valid proof of delivery, which stays attached
//   - Every transition appends a timestamped entry to the status history
package order
