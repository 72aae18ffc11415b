// Package poller drives periodic refreshes of the coin list.
//
// The poller:
//   - Refreshes once on Start, then every Interval (60s by default)
//   - Bounds each refresh with a per-poll timeout
//   - Leaves error handling to the target; a failed refresh never stops the loop
//   - Guarantees no refresh starts after Stop returns
package poller
