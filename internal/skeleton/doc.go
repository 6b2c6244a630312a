// Package skeleton shapes per-frame landmark detections into dense,
// fixed-shape multi-camera time series.
//
// Detections arrive one optional group per frame (body, right hand, left
// hand, face). Aggregation allocates every array fully NaN up front and
// overwrites only the cells a detection provides, so a camera's output
// always has shape [frames, points, 2] no matter how sparse the
// detections were. Assembly then stacks the cameras into a single
// [cameras, frames, pointsTotal, 2] array after checking that every
// camera agrees on frame and point counts — downstream triangulation
// depends on that alignment and a mismatch is unrecoverable.
package skeleton
