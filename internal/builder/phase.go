package builder

import "fmt"

// Phase is a step of the cartridge build. Phases run strictly in order.
type Phase int

const (
	PhaseFields Phase = iota
	PhaseEntryVector
	PhaseCodeStream
	PhaseChecksum
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhaseFields:      "fields",
	PhaseEntryVector: "entry vector",
	PhaseCodeStream:  "code stream",
	PhaseChecksum:    "checksum",
	PhaseDone:        "done",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// advance moves the build from phase from to the next one.
func (b *Builder) advance(from Phase) error {
	if b.phase != from {
		return fmt.Errorf("%w: running %s while in %s", ErrPhaseOrder, from, b.phase)
	}
	b.phase = from + 1
	return nil
}
