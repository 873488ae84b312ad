package stepper

import (
	"fmt"
	"strings"
)

// Method selects the integration scheme used by [Stepper.Solve].
type Method int

const (
	Euler Method = iota
	RK4
)

func (m Method) String() string {
	switch m {
	case Euler:
		return "euler"
	case RK4:
		return "rk4"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Evaluations is the number of derivative calls one step of m makes.
func (m Method) Evaluations() int {
	if m == RK4 {
		return 4
	}
	return 1
}

func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euler":
		return Euler, nil
	case "rk4":
		return RK4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Methods lists the available schemes by name.
func Methods() []string {
	return []string{Euler.String(), RK4.String()}
}
