package spinview

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShaderUniformSet is the scalar parameter block consumed by the reveal
// fragment shader. SliceStart and SliceArc are fixed per scene;
// AngularVelocity is rewritten by MotionUniformSync while the model spins.
// The version counter lets the render surface skip redundant uploads of
// the effect scalars.
type ShaderUniformSet struct {
	SliceStart      float64
	SliceArc        float64
	AngularVelocity float64

	version uint64
}

func NewShaderUniformSet(sliceStart, sliceArc float64) *ShaderUniformSet {
	return &ShaderUniformSet{
		SliceStart: sliceStart,
		SliceArc:   sliceArc,
	}
}

func (u *ShaderUniformSet) SetAngularVelocity(v float64) {
	u.AngularVelocity = v
	u.version++
}

func (u *ShaderUniformSet) Version() uint64 {
	return u.version
}

// minDrawAlpha is the overlay coverage below which a fragment is skipped
// entirely.
const minDrawAlpha = 0.01

// RevealAlpha is the per-fragment reveal/motion-blur function. Given a
// local surface position around the rotation axis it returns the overlay
// alpha and whether the fragment is drawn at all. Fragments inside the
// angular cut window come back undrawn, exposing the interior; the soft
// edges of the window widen with the normalized angular velocity, which
// emulates motion blur without temporal sampling.
//
// The same math runs on the GPU in revealShaderWGSL; this Go form is the
// reference the tests check against.
func RevealAlpha(x, y float64, u *ShaderUniformSet) (alpha float64, drawn bool) {
	angle := wrapAngle(math.Atan2(y, x) - u.SliceStart)
	v := u.AngularVelocity

	epsilon := 0.020 + 0.025*v
	edgeWidth := 0.015 + 0.020*v

	alphaLow := smoothInterp(epsilon, epsilon+edgeWidth, angle)
	alphaHigh := smoothInterp(u.SliceArc-edgeWidth, u.SliceArc, angle)

	alpha = 1 - alphaLow*(1-alphaHigh)
	return alpha, alpha >= minDrawAlpha
}

// smoothInterp is the hermite-eased step: 0 below lo, 1 above hi, with
// t*t*(3-2t) in between.
func smoothInterp(lo, hi, x float64) float64 {
	if hi <= lo {
		if x < lo {
			return 0
		}
		return 1
	}
	t := mgl64.Clamp((x-lo)/(hi-lo), 0, 1)
	return t * t * (3 - 2*t)
}

// wrapAngle maps an angle into [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// RevealShaderSource returns the WGSL of the reveal material, for
// registration with an asset server.
func RevealShaderSource() string { return revealShaderWGSL }

// revealShaderWGSL is the GPU form of the reveal effect. The vertex stage
// carries the untransformed local position through so the fragment stage
// can measure the angle around the Y rotation axis.
const revealShaderWGSL = `
struct SceneUniforms {
    mvp : mat4x4<f32>,
    model : mat4x4<f32>,
    slice_start : f32,
    slice_arc : f32,
    angular_velocity : f32,
    _pad : f32,
};

@group(0) @binding(0) var<uniform> scene : SceneUniforms;
@group(0) @binding(1) var base_color : texture_2d<f32>;
@group(0) @binding(2) var base_sampler : sampler;

struct VertexOut {
    @builtin(position) position : vec4<f32>,
    @location(0) local_pos : vec3<f32>,
    @location(1) normal : vec3<f32>,
    @location(2) uv : vec2<f32>,
};

@vertex
fn vs_main(
    @location(0) pos : vec3<f32>,
    @location(1) normal : vec3<f32>,
    @location(2) uv : vec2<f32>,
) -> VertexOut {
    var out : VertexOut;
    out.position = scene.mvp * vec4<f32>(pos, 1.0);
    out.local_pos = pos;
    out.normal = normalize((scene.model * vec4<f32>(normal, 0.0)).xyz);
    out.uv = uv;
    return out;
}

const TAU : f32 = 6.2831853071795864;

fn wrap_angle(a : f32) -> f32 {
    return a - TAU * floor(a / TAU);
}

@fragment
fn fs_main(in : VertexOut) -> @location(0) vec4<f32> {
    // Local angle around the rotation axis, relative to the slice start.
    let angle = wrap_angle(atan2(in.local_pos.z, in.local_pos.x) - scene.slice_start);
    let v = scene.angular_velocity;

    let epsilon = 0.020 + 0.025 * v;
    let edge_width = 0.015 + 0.020 * v;

    let alpha_low = smoothstep(epsilon, epsilon + edge_width, angle);
    let alpha_high = smoothstep(scene.slice_arc - edge_width, scene.slice_arc, angle);
    let alpha = 1.0 - alpha_low * (1.0 - alpha_high);

    if (alpha < 0.01) {
        discard;
    }

    let light_dir = normalize(vec3<f32>(0.4, 0.8, 0.6));
    let diffuse = max(dot(normalize(in.normal), light_dir), 0.0);
    let tex = textureSample(base_color, base_sampler, in.uv).rgb;
    let lit = tex * (0.25 + 0.75 * diffuse);
    return vec4<f32>(lit, alpha);
}
`
