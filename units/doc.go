// Package units provides reference dag units for a synthetic motion
// detection pipeline: FrameSource produces frames, MotionDetector compares
// them against a running background, TrackCounter tallies detections, and
// DetectionWriter reports them.
//
// Register adds all of them to a dag.Registry under the component names
// used in pipeline definitions:
//
//	reg := dag.NewRegistry()
//	if err := units.Register(reg); err != nil { ... }
//	g, err := dag.ResolvePipeline(def, reg, loader)
package units
