package neuralamp

// NewWithModel creates an engine at the given sample rate and loads a
// model file in one step, for hosts that know both up front.
func NewWithModel(modelPath string, sampleRate float64) (*Engine, error) {
	e, err := New(Config{SampleRate: sampleRate})
	if err != nil {
		return nil, err
	}
	if err := e.LoadModel(modelPath); err != nil {
		return nil, err
	}
	return e, nil
}
