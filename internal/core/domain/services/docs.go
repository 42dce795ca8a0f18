// Package services contains stateless domain services that operate on several
// domain objects or encode a business formula.
//
// CommissionCalculator prices the agent's payout for a delivered order using
// exact decimal arithmetic; money never passes through floating point.
package services
