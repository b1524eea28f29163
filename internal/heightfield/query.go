package heightfield

import (
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/logger"
)

// HeightAtLOD returns the height at (x, z) of the mesh simplified to the
// given activation level, in stored height units.
func (hf *Heightfield) HeightAtLOD(level, x, z int) int16 {
	s := hf.size - 1
	if z > x {
		return hf.heightQuery(level, x, z, 0, s, s, s, 0, 0) // sw half
	}
	return hf.heightQuery(level, x, z, s, 0, 0, 0, s, s) // ne half
}

// heightQuery descends the bintree from triangle (a, r, l) while its base
// vertex is active at level, then interpolates on the triangle it stops in.
func (hf *Heightfield) heightQuery(level, x, z, ax, az, rx, rz, lx, lz int) int16 {
	if (x == ax && z == az) || (x == rx && z == rz) || (x == lx && z == lz) {
		return hf.Height(x, z)
	}

	dx := lx - rx
	dz := lz - rz
	if abs(dx) <= 1 && abs(dz) <= 1 {
		// The query point should have matched a corner before this.
		logger.Warn("height query reached the finest triangle",
			zap.Int("x", x), zap.Int("z", z), zap.Int("level", level))
		return hf.Height(ax, az)
	}

	bx := rx + dx>>1
	bz := rz + dz>>1

	edgeLengthSq := float32(dx*dx+dz*dz) / 2
	sr := float32((x-ax)*(rx-ax)+(z-az)*(rz-az)) / edgeLengthSq
	sl := float32((x-ax)*(lx-ax)+(z-az)*(lz-az)) / edgeLengthSq

	if hf.Level(bx, bz) >= level {
		if sr >= sl {
			return hf.heightQuery(level, x, z, bx, bz, ax, az, rx, rz) // base, apex, right
		}
		return hf.heightQuery(level, x, z, bx, bz, lx, lz, ax, az) // base, left, apex
	}

	ay := hf.Height(ax, az)
	dr := hf.Height(rx, rz) - ay
	dl := hf.Height(lx, lz) - ay

	h := float32(ay) + sl*float32(dl) + sr*float32(dr)
	return toInt16(float32(math.Floor(float64(h) + 0.5)))
}
