package types

import "fmt"

// Axis indices of a 6DOF pose. Translations are in centimeters,
// rotations in degrees.
const (
	TX = iota
	TY
	TZ
	Yaw
	Pitch
	Roll
)

// NumAxes is the number of independent pose channels.
const NumAxes = 6

// Pose holds one 6DOF head pose sample.
type Pose [NumAxes]float64

func (p Pose) String() string {
	return fmt.Sprintf("x=%.2f y=%.2f z=%.2f yaw=%.2f pitch=%.2f roll=%.2f",
		p[TX], p[TY], p[TZ], p[Yaw], p[Pitch], p[Roll])
}
