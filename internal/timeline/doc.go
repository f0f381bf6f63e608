// Package timeline turns an issue's raw changelog into a chronological
// status history and derives time-in-status and completion from it.
//
// The pipeline is Normalize -> Reconstruct -> ClassifyCompletion. All three
// are pure functions of their inputs; none of them fetch, print or cache.
package timeline
