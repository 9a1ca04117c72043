package detect

// Stage is the progress of a detection pass.
type Stage int

const (
	Idle Stage = iota
	ScreenshotLoaded
	PortraitsLoaded
	PhaseDetected
	MapDetected
	TeamsDetected
	Done
	Failed
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "Idle"
	case ScreenshotLoaded:
		return "Screenshot"
	case PortraitsLoaded:
		return "Portraits"
	case PhaseDetected:
		return "Phase"
	case MapDetected:
		return "Map"
	case TeamsDetected:
		return "Teams"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
