// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package nativetest provides an in-memory native.Device for tests.
//
// The device records every call it receives, keeps object tables so leaks
// and double deletes are observable, fills readbacks with the last clear
// color, and lets tests script limits, extensions, fence latency, errors
// and context loss.
package nativetest

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/gogpu/gpudev/native"
)

// ErrLost is returned by object creation on a lost device.
var ErrLost = errors.New("nativetest: context lost")

// Object is a live native object.
type Object struct {
	ID   native.ObjectID
	Kind string
	Desc any
	Data []byte
}

// Calls counts device calls by name.
type Calls struct {
	Create             int
	Clear              int
	ReadPixels         int
	ReadPixelsToBuffer int
	GetBufferSubData   int
	FenceSync          int
	SyncPolls          int
	DeleteSync         int
	DeleteObject       int
	BindTexture        int
	VertexAttribPtr    int
	ProvokingVertex    int
	Release            int
}

// Device is a scriptable native.Device.
type Device struct {
	mu sync.Mutex

	level      native.Level
	params     map[native.Param]int
	extensions map[native.Extension]bool
	width      int
	height     int

	nextID  uint64
	objects map[native.ObjectID]*Object

	fences       map[native.FenceID]int
	fenceLatency int
	failFences   bool

	errors []native.ErrorCode
	lost   bool

	framebuffer native.ObjectID
	packBuffer  native.ObjectID
	clearColor  [4]float32
	provoking   native.ProvokingVertex
	enabled     map[native.Capability]bool
	textures    map[int]native.ObjectID
	attribs     map[int]native.ObjectID
	released    bool

	calls Calls
}

// New returns a Level2 device with every extension, generous limits and a
// 64x64 drawing buffer. Fences signal on their first poll.
func New() *Device {
	d := &Device{
		level: native.Level2,
		params: map[native.Param]int{
			native.ParamMaxTextureSize:             4096,
			native.ParamMax3DTextureSize:           256,
			native.ParamMaxRenderbufferSize:        4096,
			native.ParamMaxDrawBuffers:             8,
			native.ParamMaxTextureImageUnits:       16,
			native.ParamMaxVertexTextureImageUnits: 16,
			native.ParamMaxVertexAttribs:           16,
		},
		extensions: make(map[native.Extension]bool),
		width:      64,
		height:     64,
		objects:    make(map[native.ObjectID]*Object),
		fences:     make(map[native.FenceID]int),
		enabled:    make(map[native.Capability]bool),
		textures:   make(map[int]native.ObjectID),
		attribs:    make(map[int]native.ObjectID),
	}
	for _, ext := range native.Extensions() {
		d.extensions[ext] = true
	}
	return d
}

// SetLevel sets the reported API level.
func (d *Device) SetLevel(l native.Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.level = l
}

// SetParam overrides a limit.
func (d *Device) SetParam(p native.Param, v int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.params[p] = v
}

// SetExtension enables or disables an extension.
func (d *Device) SetExtension(ext native.Extension, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.extensions[ext] = on
}

// SetDrawingBufferSize resizes the default framebuffer.
func (d *Device) SetDrawingBufferSize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
}

// SetFenceLatency makes new fences report unsignaled for n polls.
func (d *Device) SetFenceLatency(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fenceLatency = n
}

// FailFenceCreation makes FenceSync return an error while on is true.
func (d *Device) FailFenceCreation(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failFences = on
}

// InjectError queues an error for the next Error call.
func (d *Device) InjectError(code native.ErrorCode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, code)
}

// Lose simulates a driver-initiated context loss. Every object is dropped.
func (d *Device) Lose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lost = true
	d.objects = make(map[native.ObjectID]*Object)
	d.fences = make(map[native.FenceID]int)
	d.framebuffer, d.packBuffer = 0, 0
}

// Restore ends a simulated loss.
func (d *Device) Restore() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lost = false
}

// Calls returns a copy of the call counters.
func (d *Device) Calls() Calls {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Live returns the number of live objects of a kind, or of every kind when
// kind is empty.
func (d *Device) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, o := range d.objects {
		if kind == "" || o.Kind == kind {
			n++
		}
	}
	return n
}

// Object returns a live object by id.
func (d *Device) Object(id native.ObjectID) (*Object, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.objects[id]
	return o, ok
}

// PendingFences returns the number of fences not yet deleted.
func (d *Device) PendingFences() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fences)
}

// Released reports whether Release was called.
func (d *Device) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

// BoundTexture returns the texture bound to a unit.
func (d *Device) BoundTexture(unit int) native.ObjectID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.textures[unit]
}

// BoundFramebuffer returns the bound framebuffer.
func (d *Device) BoundFramebuffer() native.ObjectID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.framebuffer
}

// Enabled reports whether a capability is enabled.
func (d *Device) Enabled(c native.Capability) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled[c]
}

// ProvokingConvention returns the last provoking vertex convention set.
func (d *Device) ProvokingConvention() native.ProvokingVertex {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.provoking
}

func (d *Device) Level() native.Level {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level
}

func (d *Device) Parameter(p native.Param) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params[p]
}

func (d *Device) HasExtension(ext native.Extension) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.extensions[ext]
}

func (d *Device) IsContextLost() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lost
}

func (d *Device) Error() native.ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errors) == 0 {
		return native.NoError
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}

func (d *Device) DrawingBufferSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *Device) create(kind string, desc any, size int) (native.ObjectID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		return 0, ErrLost
	}
	d.calls.Create++
	d.nextID++
	id := native.ObjectID(d.nextID)
	d.objects[id] = &Object{ID: id, Kind: kind, Desc: desc, Data: make([]byte, size)}
	return id, nil
}

func (d *Device) CreateBuffer(desc *native.BufferDesc) (native.ObjectID, error) {
	return d.create("buffer", *desc, desc.Size)
}

func (d *Device) CreateTexture(desc *native.TextureDesc) (native.ObjectID, error) {
	return d.create("texture", *desc, 0)
}

func (d *Device) CreateRenderbuffer(desc *native.RenderbufferDesc) (native.ObjectID, error) {
	return d.create("renderbuffer", *desc, 0)
}

func (d *Device) CreateFramebuffer(desc *native.FramebufferDesc) (native.ObjectID, error) {
	d.mu.Lock()
	for _, id := range desc.Color {
		if _, ok := d.objects[id]; !ok {
			d.mu.Unlock()
			return 0, errors.New("nativetest: missing color attachment")
		}
	}
	d.mu.Unlock()
	return d.create("framebuffer", *desc, 0)
}

func (d *Device) CreateShader(desc *native.ShaderDesc) (native.ObjectID, error) {
	if desc.Source == "" {
		return 0, errors.New("nativetest: empty shader source")
	}
	return d.create("shader", *desc, 0)
}

func (d *Device) CreateProgram(desc *native.ProgramDesc) (native.ObjectID, error) {
	return d.create("program", *desc, 0)
}

func (d *Device) CreateVertexArray(label string) (native.ObjectID, error) {
	return d.create("vertexArray", label, 0)
}

func (d *Device) DeleteObject(id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.DeleteObject++
	delete(d.objects, id)
}

func (d *Device) BindFramebuffer(id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.framebuffer = id
}

func (d *Device) BindRenderbuffer(native.ObjectID) {}

func (d *Device) BindBuffer(target native.BufferTarget, id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if target == native.PixelPackBuffer {
		d.packBuffer = id
	}
}

func (d *Device) BindTexture(unit int, _ native.TextureTarget, id native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.BindTexture++
	d.textures[unit] = id
}

func (d *Device) VertexAttribPointer(index int, buf native.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.VertexAttribPtr++
	d.attribs[index] = buf
}

func (d *Device) SetEnabled(c native.Capability, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled[c] = enabled
}

func (d *Device) ColorMask(_, _, _, _ bool) {}
func (d *Device) DepthMask(bool)            {}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearColor = [4]float32{r, g, b, a}
}

func (d *Device) Viewport(_, _, _, _ int) {}
func (d *Device) Scissor(_, _, _, _ int)  {}

func (d *Device) Clear(native.ClearMask) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.Clear++
}

func (d *Device) ProvokingVertex(convention native.ProvokingVertex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.ProvokingVertex++
	d.provoking = convention
}

func (d *Device) BufferData(id native.ObjectID, size int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects[id]; ok {
		o.Data = make([]byte, size)
	}
}

// fill writes width*height pixels of the clear color in the given format.
// Must be called with mu held.
func (d *Device) fill(width, height int, format native.ReadFormat, dst []byte) {
	bpp := format.BytesPerPixel()
	n := width * height
	for i := 0; i < n && (i+1)*bpp <= len(dst); i++ {
		px := dst[i*bpp : (i+1)*bpp]
		for c := 0; c < 4; c++ {
			v := d.clearColor[c]
			switch format {
			case native.ReadRGBA8:
				px[c] = byte(math.Round(float64(v) * 255))
			case native.ReadRGBA32F:
				binary.LittleEndian.PutUint32(px[c*4:], math.Float32bits(v))
			case native.ReadRGBA32I:
				binary.LittleEndian.PutUint32(px[c*4:], uint32(int32(v)))
			}
		}
	}
}

func (d *Device) ReadPixels(_, _, width, height int, format native.ReadFormat, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.ReadPixels++
	if len(dst) < width*height*format.BytesPerPixel() {
		return errors.New("nativetest: destination too small")
	}
	d.fill(width, height, format, dst)
	return nil
}

func (d *Device) ReadPixelsToBuffer(_, _, width, height int, format native.ReadFormat, buf native.ObjectID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.ReadPixelsToBuffer++
	o, ok := d.objects[buf]
	if !ok {
		return errors.New("nativetest: unknown pack buffer")
	}
	if len(o.Data) < width*height*format.BytesPerPixel() {
		return errors.New("nativetest: pack buffer too small")
	}
	d.fill(width, height, format, o.Data)
	return nil
}

func (d *Device) GetBufferSubData(id native.ObjectID, offset int, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.GetBufferSubData++
	o, ok := d.objects[id]
	if !ok {
		return errors.New("nativetest: unknown buffer")
	}
	if offset < 0 || offset > len(o.Data) {
		return errors.New("nativetest: offset out of range")
	}
	copy(dst, o.Data[offset:])
	return nil
}

func (d *Device) FenceSync() (native.FenceID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.FenceSync++
	if !d.extensions[native.ExtSyncObjects] {
		return 0, native.ErrSyncUnsupported
	}
	if d.failFences {
		return 0, errors.New("nativetest: fence creation failed")
	}
	d.nextID++
	id := native.FenceID(d.nextID)
	d.fences[id] = d.fenceLatency
	return id, nil
}

func (d *Device) SyncSignaled(id native.FenceID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.SyncPolls++
	remaining, ok := d.fences[id]
	if !ok {
		// Deleted or dropped by loss: nothing left to wait for.
		return true
	}
	if remaining > 0 {
		d.fences[id] = remaining - 1
		return false
	}
	return true
}

func (d *Device) DeleteSync(id native.FenceID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.DeleteSync++
	delete(d.fences, id)
}

func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls.Release++
	d.released = true
	d.lost = true
}

var _ native.Device = (*Device)(nil)
