package glmath

import (
	"errors"
	"fmt"
	"strings"
)

// Component letter sets accepted in swizzle patterns. A pattern may only use letters from one set.
var swizzleSets = [...]string{"xyzw", "rgba", "stpq"}

// Swizzle is a validated component selection such as "yx" or "xyxy" for a vector of a fixed arity.
// The zero value is not a valid Swizzle; create them with [NewSwizzle].
type Swizzle struct {
	pattern string
	idx     [4]uint8
	arity   uint8
}

// NewSwizzle validates pattern against a source vector with arity components.
// Patterns must be 1 to 4 letters long and reference only existing components.
func NewSwizzle(arity int, pattern string) (Swizzle, error) {
	if arity < 2 || arity > 4 {
		return Swizzle{}, fmt.Errorf("swizzle source arity must be 2, 3 or 4, got %d", arity)
	} else if len(pattern) == 0 {
		return Swizzle{}, errors.New("empty swizzle pattern")
	} else if len(pattern) > 4 {
		return Swizzle{}, fmt.Errorf("swizzle pattern %q longer than 4 components", pattern)
	}
	set := ""
	for _, s := range swizzleSets {
		if strings.IndexByte(s, pattern[0]) >= 0 {
			set = s
			break
		}
	}
	if set == "" {
		return Swizzle{}, fmt.Errorf("invalid swizzle component %q in %q", pattern[0], pattern)
	}
	sw := Swizzle{pattern: pattern, arity: uint8(arity)}
	for i := 0; i < len(pattern); i++ {
		c := strings.IndexByte(set, pattern[i])
		if c < 0 {
			return Swizzle{}, fmt.Errorf("swizzle %q mixes component sets or has invalid component %q", pattern, pattern[i])
		} else if c >= arity {
			return Swizzle{}, fmt.Errorf("swizzle %q component %q out of range for vec%d", pattern, pattern[i], arity)
		}
		sw.idx[i] = uint8(c)
	}
	return sw, nil
}

// MustSwizzle is like [NewSwizzle] but panics on an invalid pattern.
func MustSwizzle(arity int, pattern string) Swizzle {
	sw, err := NewSwizzle(arity, pattern)
	if err != nil {
		panic(err)
	}
	return sw
}

// String returns the swizzle pattern as written in GLSL.
func (sw Swizzle) String() string { return sw.pattern }

// Len returns the amount of components selected, which is the arity of the result.
func (sw Swizzle) Len() int { return len(sw.pattern) }

// Arity returns the arity of the vectors the swizzle applies to.
func (sw Swizzle) Arity() int { return int(sw.arity) }

// Indices returns the source component index of each selected component.
func (sw Swizzle) Indices() []int {
	idx := make([]int, sw.Len())
	for i := range idx {
		idx[i] = int(sw.idx[i])
	}
	return idx
}

func (sw Swizzle) apply(src [4]float32, srcArity, dstLen int) (dst [4]float32) {
	if sw.arity == 0 {
		panic("use of zero value Swizzle")
	} else if srcArity != int(sw.arity) {
		panic(fmt.Sprintf("swizzle %q built for vec%d applied to vec%d", sw.pattern, sw.arity, srcArity))
	} else if dstLen != sw.Len() {
		panic(fmt.Sprintf("swizzle %q yields %d components, not %d", sw.pattern, sw.Len(), dstLen))
	}
	for i := 0; i < dstLen; i++ {
		dst[i] = src[sw.idx[i]]
	}
	return dst
}

// SwizzleScalar projects a single component of v. Panics if sw does not select exactly one component of a V.
func SwizzleScalar[V Vector](v V, sw Swizzle) float32 {
	return sw.apply(Array(v), Arity[V](), 1)[0]
}

// Swizzle2 projects v onto a Vec2. Panics if sw does not select two components of a V.
func Swizzle2[V Vector](v V, sw Swizzle) Vec2 {
	return FromArray[Vec2](sw.apply(Array(v), Arity[V](), 2))
}

// Swizzle3 projects v onto a Vec3. Panics if sw does not select three components of a V.
func Swizzle3[V Vector](v V, sw Swizzle) Vec3 {
	return FromArray[Vec3](sw.apply(Array(v), Arity[V](), 3))
}

// Swizzle4 projects v onto a Vec4. Panics if sw does not select four components of a V.
func Swizzle4[V Vector](v V, sw Swizzle) Vec4 {
	return FromArray[Vec4](sw.apply(Array(v), Arity[V](), 4))
}
