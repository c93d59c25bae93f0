package neuralamp

import "time"

const (
	// modelPrimeLength is the number of silent samples pushed through a
	// freshly built network before it is published to the audio path,
	// letting the recurrent state settle away from its zero origin.
	modelPrimeLength = 2048

	// swapPollInterval is how often the loader re-checks the audio
	// context's running flag while waiting to retire a superseded model.
	swapPollInterval = 5 * time.Millisecond

	// boolThreshold converts the float parameter surface to on/off
	// switches: values strictly above it read as enabled.
	boolThreshold = 0.5
)
