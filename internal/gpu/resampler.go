//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggplay"
	"github.com/gogpu/ggplay/backend"
	"github.com/gogpu/ggplay/internal/filter"
	"github.com/gogpu/ggplay/internal/parallel"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed shaders/resample.wgsl
var resampleShaderSource string

const (
	// workgroupSize is the shader's @workgroup_size along X and Y.
	workgroupSize = parallel.TileWidth

	// paramsSize is the byte size of the Params uniform.
	paramsSize = 32

	// fenceTimeout is the maximum time to wait for one resample.
	fenceTimeout = 5 * time.Second
)

func init() {
	backend.Register(backend.BackendGPU, func() (ggplay.Resampler, error) {
		return New()
	})
}

// Resampler is the GPU engine. Calls are serialized on an internal mutex;
// the queue is used by one resample at a time.
type Resampler struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	adapterName    string
	externalDevice bool // true when using a shared device (don't destroy on Close)
	closed         bool
}

// New acquires a GPU device and builds the resample pipeline.
// The returned error wraps ggplay.ErrNoDevice when no adapter or device is
// available.
func New() (*Resampler, error) {
	r := &Resampler{}
	if err := r.initGPU(); err != nil {
		r.release()
		return nil, err
	}
	return r, nil
}

// Name returns "gpu".
func (r *Resampler) Name() string { return backend.BackendGPU }

// Adapter returns the name of the adapter in use, or "external" for a
// provider-supplied device.
func (r *Resampler) Adapter() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adapterName
}

// SetLogger sets the logger for the GPU engine.
func (r *Resampler) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// SetDeviceProvider switches the engine to a shared GPU device from an
// external provider. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (r *Resampler) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ggplay.ErrClosed
	}

	r.release()
	r.device = device
	r.queue = queue
	r.externalDevice = true
	r.adapterName = "external"

	if err := r.createPipeline(); err != nil {
		return fmt.Errorf("gpu: create pipeline with shared device: %w", err)
	}
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

// Resample produces a p.Dst raster from src on the GPU. src is not
// modified.
func (r *Resampler) Resample(src ggplay.Raster, p ggplay.FilterParams) (ggplay.Raster, error) {
	if err := p.Validate(src); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ggplay.ErrClosed
	}
	if r.pipeline == nil {
		return nil, fmt.Errorf("gpu: pipeline not initialized")
	}

	start := time.Now()
	out, err := r.dispatch(src, p)
	if err != nil {
		return nil, err
	}

	slogger().Debug("gpu: resample",
		"src", p.Src, "dst", p.Dst, "filter", p.Filter,
		"groups_x", parallel.GroupCount(p.Dst.Width, workgroupSize),
		"groups_y", parallel.GroupCount(p.Dst.Height, workgroupSize),
		"elapsed", time.Since(start))
	return out, nil
}

// Close releases all GPU resources. Close is safe to call multiple times.
func (r *Resampler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.release()
}

// release destroys the pipeline and, unless the device is shared, the
// device and instance.
func (r *Resampler) release() {
	r.destroyPipeline()
	if !r.externalDevice {
		if r.device != nil {
			r.device.Destroy()
		}
		if r.instance != nil {
			r.instance.Destroy()
		}
	}
	r.device = nil
	r.queue = nil
	r.instance = nil
	r.externalDevice = false
}

func (r *Resampler) initGPU() error {
	vk, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not available", ggplay.ErrNoDevice)
	}
	instance, err := vk.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %v", ggplay.ErrNoDevice, err)
	}
	r.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("%w: no GPU adapters found", ggplay.ErrNoDevice)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("%w: open device: %v", ggplay.ErrNoDevice, err)
	}
	r.device = openDev.Device
	r.queue = openDev.Queue
	r.adapterName = selected.Info.Name

	if err := r.createPipeline(); err != nil {
		return fmt.Errorf("gpu: create pipeline: %w", err)
	}
	slogger().Info("gpu: resampler initialized", "adapter", selected.Info.Name)
	return nil
}

func (r *Resampler) createPipeline() error {
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "resample",
		Source: hal.ShaderSource{WGSL: resampleShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile resample shader: %w", err)
	}
	r.shader = shader

	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "resample_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "resample_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	pipeline, err := r.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "resample_pipeline", Layout: r.pipeLayout,
		Compute: hal.ComputeState{Module: r.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	r.pipeline = pipeline

	return nil
}

func (r *Resampler) destroyPipeline() {
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyComputePipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// dispatchResources tracks per-call GPU resources for cleanup.
type dispatchResources struct {
	device    hal.Device
	buffers   []hal.Buffer
	bindGroup hal.BindGroup
	cmdBuf    hal.CommandBuffer
	fence     hal.Fence
}

func (res *dispatchResources) buffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	buf, err := res.device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", desc.Label, err)
	}
	res.buffers = append(res.buffers, buf)
	return buf, nil
}

// cleanup destroys all tracked per-call resources.
func (res *dispatchResources) cleanup() {
	if res.fence != nil {
		res.device.DestroyFence(res.fence)
	}
	if res.cmdBuf != nil {
		res.device.FreeCommandBuffer(res.cmdBuf)
	}
	if res.bindGroup != nil {
		res.device.DestroyBindGroup(res.bindGroup)
	}
	for _, b := range res.buffers {
		res.device.DestroyBuffer(b)
	}
}

func (r *Resampler) dispatch(src ggplay.Raster, p ggplay.FilterParams) (ggplay.Raster, error) {
	res := &dispatchResources{device: r.device}
	defer res.cleanup()

	srcSize := uint64(len(src))
	dstSize := uint64(p.Dst.RasterLen()) //nolint:gosec // validated positive geometry

	paramsBuf, err := res.buffer(&hal.BufferDescriptor{
		Label: "resample_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	srcBuf, err := res.buffer(&hal.BufferDescriptor{
		Label: "resample_src", Size: srcSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	dstBuf, err := res.buffer(&hal.BufferDescriptor{
		Label: "resample_dst", Size: dstSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, err
	}
	stagingBuf, err := res.buffer(&hal.BufferDescriptor{
		Label: "resample_staging", Size: dstSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	r.queue.WriteBuffer(paramsBuf, 0, encodeParams(p))
	r.queue.WriteBuffer(srcBuf, 0, src)

	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "resample_bind", Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: srcBuf.NativeHandle(), Offset: 0, Size: srcSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: dstSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	res.bindGroup = bg

	if err := r.encode(res, dstBuf, stagingBuf, p.Dst, dstSize); err != nil {
		return nil, err
	}
	if err := r.submitAndWait(res); err != nil {
		return nil, err
	}

	out := ggplay.NewRaster(p.Dst)
	if err := r.queue.ReadBuffer(stagingBuf, 0, out); err != nil {
		return nil, fmt.Errorf("gpu: readback: %w", err)
	}
	return out, nil
}

// encode records the compute pass and the copy into the staging buffer.
func (r *Resampler) encode(res *dispatchResources, dstBuf, stagingBuf hal.Buffer, dst ggplay.Geometry, size uint64) error {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "resample_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("resample"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "resample_pass"})
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, res.bindGroup, nil)
	pass.Dispatch(
		parallel.GroupCount(dst.Width, workgroupSize),
		parallel.GroupCount(dst.Height, workgroupSize),
		1,
	)
	pass.End()

	encoder.CopyBufferToBuffer(dstBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	res.cmdBuf = cmdBuf
	return nil
}

// submitAndWait submits the command buffer and waits for GPU completion.
func (r *Resampler) submitAndWait(res *dispatchResources) error {
	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	res.fence = fence

	if err := r.queue.Submit([]hal.CommandBuffer{res.cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}

	ok, err := r.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("gpu: wait for GPU: %w", err)
	}
	if !ok {
		return errTimeout
	}
	return nil
}

var errTimeout = errors.New("gpu: timeout after " + fenceTimeout.String())

// encodeParams serializes the Params uniform (see shaders/resample.wgsl).
func encodeParams(p ggplay.FilterParams) []byte {
	buf := make([]byte, paramsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], uint32(p.Src.Width))    //nolint:gosec // validated positive geometry
	le.PutUint32(buf[4:8], uint32(p.Src.Height))   //nolint:gosec // validated positive geometry
	le.PutUint32(buf[8:12], uint32(p.Dst.Width))   //nolint:gosec // validated positive geometry
	le.PutUint32(buf[12:16], uint32(p.Dst.Height)) //nolint:gosec // validated positive geometry
	le.PutUint32(buf[16:20], uint32(p.Filter))
	le.PutUint32(buf[20:24], math.Float32bits(p.Strength))
	le.PutUint32(buf[24:28], math.Float32bits(filter.MaxRadius))
	// buf[28:32] is padding.
	return buf
}
