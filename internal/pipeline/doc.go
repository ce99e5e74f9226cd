// Package pipeline runs a scan from start to finish.
//
// A run moves through five phases in a fixed order:
//
//	Discovering   -> stream files under the root, honoring ignore rules
//	Classifying   -> assign each file Full, TreeOnly or Excluded
//	Loading       -> read the content of Full files
//	Transforming  -> strip comments and normalize whitespace (only when configured)
//	Formatting    -> render the artifact
//
// Progress is reported once at the start of each phase and once per processed
// item. Within a phase the Processed count never decreases, even when the
// classification and loading phases fan out over a worker pool.
//
// Cancellation is the only fatal runtime condition: a cancelled run returns
// ctx.Err() and no result. Files that fail to load are recorded in the result
// and the run continues.
package pipeline
