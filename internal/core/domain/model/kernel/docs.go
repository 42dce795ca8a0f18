// Package kernel provides the shared value objects of the fulfillment domain:
//   - UUID: identifier for orders, offers, notifications and agents
//   - Money: integer minor-currency amounts
//   - DeliveryTarget: station (coach/seat) or street-address hand-over point
//
// Value objects are immutable and must be built through their constructors;
// zero values fail Validate.
package kernel
