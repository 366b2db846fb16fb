//go:build opengl

package compute

import (
	"context"
	_ "embed"
	"fmt"
	"runtime"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"go.uber.org/zap"
)

var (
	//go:embed shaders/acceleration.comp
	accelerationSrc string
	//go:embed shaders/velocity.comp
	velocitySrc string
	//go:embed shaders/position.comp
	positionSrc string
)

const workGroupSize = 256

// OpenGLBackend runs each pass as a compute shader dispatch followed by a
// storage barrier and a readback. GL state is bound to the OS thread that
// opened it; every call must come from that goroutine.
type OpenGLBackend struct {
	accProgram uint32
	velProgram uint32
	posProgram uint32

	posBuf  uint32
	velBuf  uint32
	accBuf  uint32
	massBuf uint32

	capacity int
	staging  []float32
	log      *zap.Logger
}

// OpenOpenGL creates a hidden window for the GL context and compiles the
// three kernels. Any failure is reported as dynamo.ErrBackendUnavailable.
func OpenOpenGL(log *zap.Logger) (*OpenGLBackend, error) {
	runtime.LockOSThread()

	rl.SetTraceLogLevel(rl.LogNone)
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(1, 1, "nbodysim compute")
	if !rl.IsWindowReady() {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: opengl: no window context", dynamo.ErrBackendUnavailable)
	}

	fail := func(err error) (*OpenGLBackend, error) {
		rl.CloseWindow()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: opengl: %v", dynamo.ErrBackendUnavailable, err)
	}

	if err := gl.Init(); err != nil {
		return fail(err)
	}

	b := &OpenGLBackend{log: log}

	var err error
	if b.accProgram, err = createComputeProgram("acceleration", accelerationSrc); err != nil {
		return fail(err)
	}
	if b.velProgram, err = createComputeProgram("velocity", velocitySrc); err != nil {
		return fail(err)
	}
	if b.posProgram, err = createComputeProgram("position", positionSrc); err != nil {
		return fail(err)
	}

	var maxGroups int32
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, 0, &maxGroups)
	log.Info("opengl compute initialized",
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Int32("max_work_groups", maxGroups))

	return b, nil
}

func (b *OpenGLBackend) Name() string    { return "opengl" }
func (b *OpenGLBackend) Available() bool { return b.accProgram != 0 }

func (b *OpenGLBackend) Supports(force physics.ForceModel) bool {
	switch force.(type) {
	case physics.Gravity, physics.Kinematic:
		return true
	default:
		return false
	}
}

func (b *OpenGLBackend) Accelerate(ctx context.Context, snap physics.Snapshot, acc []mgl32.Vec3, force physics.ForceModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var grav physics.Gravity
	switch f := force.(type) {
	case physics.Kinematic:
		return nil
	case physics.Gravity:
		grav = f
	default:
		return fmt.Errorf("%w: %s on opengl", dynamo.ErrUnsupportedForce, force.Name())
	}

	n := len(snap.Positions)
	b.ensure(n)

	b.upload(b.posBuf, snap.Positions)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.massBuf)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n*4, gl.Ptr(snap.Masses))

	gl.UseProgram(b.accProgram)
	gl.Uniform1f(uniform(b.accProgram, "gravity"), grav.G)
	gl.Uniform1f(uniform(b.accProgram, "epsilon2"), grav.Epsilon*grav.Epsilon)
	gl.Uniform1ui(uniform(b.accProgram, "bodyCount"), uint32(n))

	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, b.posBuf)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, b.massBuf)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 2, b.accBuf)

	b.run(n)
	b.download(b.accBuf, acc)
	return nil
}

func (b *OpenGLBackend) Velocity(ctx context.Context, vel, acc []mgl32.Vec3, dt float32) error {
	return b.integrate(ctx, b.velProgram, b.velBuf, b.accBuf, vel, acc, dt)
}

func (b *OpenGLBackend) Position(ctx context.Context, pos, vel []mgl32.Vec3, dt float32) error {
	return b.integrate(ctx, b.posProgram, b.posBuf, b.velBuf, pos, vel, dt)
}

func (b *OpenGLBackend) integrate(ctx context.Context, program, dstBuf, rateBuf uint32, dst, rate []mgl32.Vec3, dt float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n := len(dst)
	b.ensure(n)
	b.upload(dstBuf, dst)
	b.upload(rateBuf, rate)

	gl.UseProgram(program)
	gl.Uniform1f(uniform(program, "dt"), dt)
	gl.Uniform1ui(uniform(program, "bodyCount"), uint32(n))
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, dstBuf)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, rateBuf)

	b.run(n)
	b.download(dstBuf, dst)
	return nil
}

// run dispatches one invocation per body and blocks until the writes are
// visible to the readback.
func (b *OpenGLBackend) run(n int) {
	groups := (n + workGroupSize - 1) / workGroupSize
	gl.DispatchCompute(uint32(groups), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)
	gl.Finish()
}

func (b *OpenGLBackend) ensure(n int) {
	if n <= b.capacity {
		return
	}
	b.release()

	vecSize := n * 4 * 4
	for _, buf := range []*uint32{&b.posBuf, &b.velBuf, &b.accBuf} {
		gl.GenBuffers(1, buf)
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, *buf)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, vecSize, nil, gl.DYNAMIC_DRAW)
	}
	gl.GenBuffers(1, &b.massBuf)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.massBuf)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, n*4, nil, gl.DYNAMIC_DRAW)

	b.staging = make([]float32, n*4)
	b.capacity = n
	b.log.Debug("opengl buffers allocated", zap.Int("bodies", n))
}

// std430 pads vec3 arrays to 16 bytes, so vectors travel as vec4.
func (b *OpenGLBackend) upload(buf uint32, src []mgl32.Vec3) {
	for i, v := range src {
		b.staging[i*4] = v[0]
		b.staging[i*4+1] = v[1]
		b.staging[i*4+2] = v[2]
		b.staging[i*4+3] = 0
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(src)*16, gl.Ptr(b.staging))
}

// download copies orbiter results back; index 0 is left untouched.
func (b *OpenGLBackend) download(buf uint32, dst []mgl32.Vec3) {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(dst)*16, gl.Ptr(b.staging))
	for i := 1; i < len(dst); i++ {
		dst[i] = mgl32.Vec3{b.staging[i*4], b.staging[i*4+1], b.staging[i*4+2]}
	}
}

func (b *OpenGLBackend) release() {
	if b.capacity == 0 {
		return
	}
	bufs := []uint32{b.posBuf, b.velBuf, b.accBuf, b.massBuf}
	gl.DeleteBuffers(int32(len(bufs)), &bufs[0])
	b.capacity = 0
}

func (b *OpenGLBackend) Close() error {
	b.release()
	for _, p := range []uint32{b.accProgram, b.velProgram, b.posProgram} {
		if p != 0 {
			gl.DeleteProgram(p)
		}
	}
	b.accProgram, b.velProgram, b.posProgram = 0, 0, 0
	rl.CloseWindow()
	runtime.UnlockOSThread()
	return nil
}

func uniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func createComputeProgram(name, source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile %s kernel: %v", name, log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)
	gl.DeleteShader(shader)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link %s kernel", name)
	}

	return program, nil
}
