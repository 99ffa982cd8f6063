// SPDX-License-Identifier: EPL-2.0

// Package source provides the compressed input for the pipeline.
//
// Memory hands out sub-slices of a buffer already in memory; Reader and File
// pull from storage through one reusable chunk buffer. Both report the end of
// input as io.EOF, which is normal termination.
package source
