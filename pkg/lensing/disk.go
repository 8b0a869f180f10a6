package lensing

import (
	"math"

	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/pkg/physics"
)

const (
	planeEpsilon    = 1e-6
	horizonFactor   = 1.05 // Disk radii at or below this multiple of Rs fall into the hole
	diskInnerFactor = 1.2  // Full disk brightness at and inside this multiple of Rs
	diskOuterFactor = 4.0  // Disk fades to nothing at this multiple of Rs
	diskOpacity     = 0.85
	horizonDimming  = 0.2 // Background kept when light is swallowed
)

var (
	diskHot  = core.NewVec3(1.0, 0.8, 0.35)
	diskCool = core.NewVec3(0.8, 0.35, 0.08)
	// Beaming brightens the side of the disk facing +X
	beamingAxis = core.NewVec2(1, 0)
)

// DiskResult classifies how a ray interacted with the disk plane
type DiskResult int

const (
	DiskMiss      DiskResult = iota // Parallel to the plane or intersecting behind the camera
	DiskEmission                    // Hit the disk outside the horizon threshold
	DiskSwallowed                   // Hit the plane inside the horizon threshold
)

func (r DiskResult) String() string {
	switch r {
	case DiskEmission:
		return "emission"
	case DiskSwallowed:
		return "swallowed"
	default:
		return "miss"
	}
}

// DiskHit reports the intersection with the y=0 plane
type DiskHit struct {
	Result DiskResult
	T      float64   // Ray parameter of the intersection
	Point  core.Vec3 // Intersection point in scene units
	Radius float64   // Planar radius of the intersection
}

// IntersectDiskPlane intersects a ray with the equatorial plane y=0. The
// denominator is biased by a small epsilon so rays parallel to the plane
// produce a huge but finite t.
func IntersectDiskPlane(origin, dir core.Vec3, rsScene float64) DiskHit {
	t := -origin.Y / (dir.Y + planeEpsilon)
	if !(t > 0) || math.IsInf(t, 0) {
		return DiskHit{Result: DiskMiss, T: t}
	}

	hit := origin.Add(dir.Multiply(t))
	r := math.Hypot(hit.X, hit.Z)

	result := DiskSwallowed
	if r > rsScene*horizonFactor {
		result = DiskEmission
	}
	return DiskHit{Result: result, T: t, Point: hit, Radius: r}
}

// DiskColor returns the unblended emission of the disk at a hit point
func DiskColor(hit core.Vec3, r, rsScene float64) core.Vec3 {
	rings := 0.5 + 0.5*math.Sin(math.Log(r+1.0)*20.0)
	fall := core.Smoothstep(diskOuterFactor*rsScene, diskInnerFactor*rsScene, r)

	side := core.Clamp(core.NewVec2(hit.X, hit.Z).Normalize().Dot(beamingAxis), -1, 1)
	beaming := 0.65 + 0.35*side

	return diskCool.Mix(diskHot, rings).Multiply(beaming * fall)
}

// ShadeDisk composites the accretion disk over a background color.
// Emission blends the disk at fixed opacity; a swallowed ray keeps only a
// fraction of the background; a miss leaves the background untouched.
func ShadeDisk(origin, dir core.Vec3, massKg float64, background core.Vec3) (core.Vec3, DiskHit) {
	rsScene := physics.SchwarzschildRadiusScene(massKg)
	hit := IntersectDiskPlane(origin, dir, rsScene)

	switch hit.Result {
	case DiskEmission:
		disk := DiskColor(hit.Point, hit.Radius, rsScene)
		return background.Mix(disk, diskOpacity), hit
	case DiskSwallowed:
		return background.Multiply(horizonDimming), hit
	default:
		return background, hit
	}
}
