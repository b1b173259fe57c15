package portal

import (
	"portalview/internal/geom"

	"github.com/chewxy/math32"
)

const (
	maxNear     = 1000
	maxFar      = 100000
	maxDistance = 50000
	minDet      = 1e-6
)

// ValidateView is the single gate every pass goes through before it is
// issued. A nil error means the camera state is safe to render with;
// otherwise the error is a *ValidationError.
func ValidateView(v View) error {
	pos := v.Pose.Position
	switch {
	case !geom.FiniteVec3(pos):
		return &ValidationError{Field: "position", Value: firstBad(pos[:]...), Reason: "not finite"}
	case !geom.Finite(v.Pose.Rotation.W) || !geom.FiniteVec3(v.Pose.Rotation.V):
		return &ValidationError{Field: "rotation", Value: firstBad(v.Pose.Rotation.W, v.Pose.Rotation.V[0], v.Pose.Rotation.V[1], v.Pose.Rotation.V[2]), Reason: "not finite"}
	case pos.Len() > maxDistance:
		return &ValidationError{Field: "position", Value: pos.Len(), Reason: "too far from origin"}
	}

	if !geom.FiniteMat4(v.Projection) {
		return &ValidationError{Field: "projection", Value: firstBad(v.Projection[:]...), Reason: "not finite"}
	}
	if det := v.Projection.Det(); math32.Abs(det) <= minDet || !geom.Finite(det) {
		return &ValidationError{Field: "projection", Value: det, Reason: "degenerate"}
	}

	lens := v.Lens
	switch {
	case !(lens.Near > 0) || lens.Near > maxNear:
		return &ValidationError{Field: "near", Value: lens.Near, Reason: "out of range"}
	case !(lens.Far > lens.Near) || lens.Far > maxFar:
		return &ValidationError{Field: "far", Value: lens.Far, Reason: "out of range"}
	case !geom.Finite(lens.Aspect) || !(lens.Aspect > 0):
		return &ValidationError{Field: "aspect", Value: lens.Aspect, Reason: "out of range"}
	case !lens.Orthographic && (!(lens.FovY > 0) || !(lens.FovY < 180)):
		return &ValidationError{Field: "fov", Value: lens.FovY, Reason: "out of range"}
	case lens.Orthographic && (!geom.Finite(lens.OrthoSize) || !(lens.OrthoSize > 0)):
		return &ValidationError{Field: "ortho size", Value: lens.OrthoSize, Reason: "out of range"}
	}
	return nil
}

func firstBad(vals ...float32) float32 {
	for _, f := range vals {
		if !geom.Finite(f) {
			return f
		}
	}
	return 0
}
