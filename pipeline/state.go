// SPDX-License-Identifier: EPL-2.0

package pipeline

// State of the driver loop.
type State int

const (
	// Filling admits source chunks until the front of the reservoir is
	// aligned or nothing more fits.
	Filling State = iota
	// Syncing searches for the first unit and starts the output.
	Syncing
	// Streaming pushes, admits and decodes.
	Streaming
	// Draining runs after the source ended: it pushes and decodes what is
	// still buffered.
	Draining
	// Stopped is terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Filling:
		return "filling"
	case Syncing:
		return "syncing"
	case Streaming:
		return "streaming"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
