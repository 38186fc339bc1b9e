// Package util provides statistics helpers used to describe the state of a store
// without keeping any extra metadata on disk.
//
// The package contains:
//   - Stats and DistributionStats: summary statistics over a set of samples, used to
//     judge how evenly mappings are spread over shard directories
//   - SizeHistogram: a bucketed histogram with exponential boundaries for tracking
//     value sizes from bytes to gigabytes with constant memory
package util
