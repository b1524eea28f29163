package heightfield

import (
	"math"
)

// ln2 is the float32 divisor used to take base-2 logarithms.
const ln2 float32 = 0.693147180559945

// ActivationLevel returns the level at which a vertex with the given
// vertical error first becomes required: floor(log2(err/base) + 0.5),
// capped at MaxLevel. Errors below base return -1.
//
// Every step rounds to float32, so a ratio just below 2^(k+0.5), such as
// float32(math.Sqrt2), can still reach level k+1.
func ActivationLevel(err, base float32) int {
	if err < base {
		return -1
	}
	log2 := float32(math.Log(float64(err/base))) / ln2
	level := int(math.Floor(float64(float32(log2 + 0.5))))
	return min(max(level, 0), MaxLevel)
}

// Update computes a view-independent error for every bintree base vertex and
// activates each vertex at the level its error requires. It walks the two
// right triangles that split the square along its (0,0)-(n,n) diagonal.
func (hf *Heightfield) Update(baseMaxError float32) {
	s := hf.size - 1
	hf.update(baseMaxError, 0, s, s, s, 0, 0) // sw half
	hf.update(baseMaxError, s, 0, 0, 0, s, s) // ne half
}

// update handles the triangle with apex a, right corner r and left corner l,
// then recurses into its two children.
func (hf *Heightfield) update(baseMaxError float32, ax, az, rx, rz, lx, lz int) {
	dx := lx - rx
	dz := lz - rz
	if abs(dx) <= 1 && abs(dz) <= 1 {
		// Finest triangle: no base vertex.
		return
	}

	bx := rx + dx>>1
	bz := rz + dz>>1

	sum := int(hf.Height(lx, lz)) + int(hf.Height(rx, rz))
	diff := float32(hf.Height(bx, bz)) - float32(sum)/2
	vertErr := float32(math.Abs(float64(diff * hf.verticalScale)))
	if vertErr >= baseMaxError {
		hf.Activate(bx, bz, ActivationLevel(vertErr, baseMaxError))
	}

	hf.update(baseMaxError, bx, bz, ax, az, rx, rz) // base, apex, right
	hf.update(baseMaxError, bx, bz, lx, lz, ax, az) // base, left, apex
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
