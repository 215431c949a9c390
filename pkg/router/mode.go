package router

// Mode selects the optimization policy for a route search.
type Mode int

const (
	// ModeTime minimizes passage time.
	ModeTime Mode = iota
	// ModeFuel minimizes fuel burn.
	ModeFuel
	// ModeWeather avoids heavy sea states even at the cost of distance.
	ModeWeather
)

// ParseMode maps the API string to a Mode. Unknown values fall back to time.
func ParseMode(s string) Mode {
	switch s {
	case "fuel":
		return ModeFuel
	case "weather":
		return ModeWeather
	default:
		return ModeTime
	}
}

func (m Mode) String() string {
	switch m {
	case ModeFuel:
		return "fuel"
	case ModeWeather:
		return "weather"
	default:
		return "time"
	}
}

// Weights returns the fixed (distance, weather) cost weights for the mode.
// The heuristic stays admissible for any non-negative weather weight because
// it prices remaining distance only.
func (m Mode) Weights() (distance, weather float64) {
	switch m {
	case ModeFuel:
		return 1.0, 0.5
	case ModeWeather:
		return 0.6, 2.0
	default:
		return 1.0, 0.3
	}
}
