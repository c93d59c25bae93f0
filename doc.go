// Package neuralamp implements the real-time signal core of a neural
// guitar amp modeler: a fixed per-buffer processing pipeline that combines
// a conventional analog-style tone stack with a runtime-swappable neural
// inference model capturing a learned amplifier response.
//
// # Pipeline
//
// Every buffer runs through the same fixed stage order, in place on the
// output buffer:
//
//	input lowpass -> pre-gain ramp -> [EQ if pre] -> neural model ->
//	DC blocker -> [EQ if post] -> master-gain ramp
//
// The EQ cascade position (pre or post model), the EQ and model bypasses
// and the wah-like bandpass mid mode are all live parameters. The audio
// path never blocks, never allocates and never returns an error: it is
// designed to always produce output.
//
// # Parameters
//
// The engine exposes a fixed table of 18 indexed parameters
// ([ParamSpecs]) with declared names, units, defaults and ranges,
// accessed through [Engine.GetParameterValue] and
// [Engine.SetParameterValue]. Writes re-derive the affected filter
// coefficients or smoother targets synchronously.
//
// Parameter scalars are shared between the control and audio contexts
// without locking. Tearing of a single in-flight write is tolerated by
// construction: every consumer either smooths the value over time or
// recomputes its coefficients wholesale on the next control write, so a
// torn read is audibly indistinguishable from ordinary parameter
// automation.
//
// # Models
//
// A model is described by a JSON document ([Engine.LoadModel]) carrying
// the input tensor shape, an optional input-skip flag, an optional output
// gain in dB and the layer stack consumed by the architecture factory in
// internal/nn. Loading runs entirely on the control context: the
// description is parsed, validated, built, reset and primed over a few
// thousand silent samples before the finished model is published to the
// audio context in a single atomic pointer store.
//
// The audio context toggles a running flag around each model invocation;
// after publishing a replacement, the loader sleep-polls that flag so the
// superseded model is never torn down while a Forward call is still
// inside it. The audio context itself never waits.
//
// A failed load leaves the previously active model untouched, so a bad
// file on disk can never silence a live rig.
package neuralamp
