// Package model defines shared data types used across the coin tracker.
//
// Conventions:
//   - Money values (prices, volumes, market caps): decimal.Decimal, USD
//   - Percentage changes: *float64, nil means the provider did not report it
//   - Timestamps: time.Time in UTC
//   - IDs: provider coin id strings ("bitcoin"), uuid.UUID for fetch batches
package model
