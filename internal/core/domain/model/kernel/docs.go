// Package kernel contains shared value objects used across the domain model.
// These are small immutable types with validation enforced at construction:
// identifiers (UUID) and the delivery Address.
package kernel
