package markers

import (
	"sort"
	"sync"

	"github.com/denysvitali/ev-nearby/evmap"
)

type OpKind int

const (
	OpAdd OpKind = iota
	OpRemove
	OpCamera
)

// Op is one call recorded by a MemorySurface.
type Op struct {
	Kind   OpKind
	Handle Handle
	Marker Marker
	Camera Camera
}

type Camera struct {
	Point evmap.GeoPoint
	Zoom  float64
}

// MemorySurface is a Surface that keeps the markers in memory. It records
// every call so the order of operations can be inspected.
type MemorySurface struct {
	mu      sync.Mutex
	next    Handle
	markers map[Handle]Marker
	camera  *Camera
	ops     []Op
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{markers: make(map[Handle]Marker)}
}

func (m *MemorySurface) AddMarker(marker Marker) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.markers[m.next] = marker
	m.ops = append(m.ops, Op{Kind: OpAdd, Handle: m.next, Marker: marker})
	return m.next
}

func (m *MemorySurface) RemoveMarker(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	marker, ok := m.markers[h]
	if !ok {
		log.Warnf("removing unknown marker %d", h)
		return
	}
	delete(m.markers, h)
	m.ops = append(m.ops, Op{Kind: OpRemove, Handle: h, Marker: marker})
}

func (m *MemorySurface) AnimateCamera(point evmap.GeoPoint, zoom float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Camera{Point: point, Zoom: zoom}
	m.camera = &c
	m.ops = append(m.ops, Op{Kind: OpCamera, Camera: c})
}

// Markers returns the markers on the surface, ordered by handle.
func (m *MemorySurface) Markers() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.markers))
	for h, marker := range m.markers {
		out = append(out, Entry{Marker: marker, Handle: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Count returns how many markers of category c are on the surface.
func (m *MemorySurface) Count(c Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, marker := range m.markers {
		if marker.Category == c {
			n++
		}
	}
	return n
}

func (m *MemorySurface) Camera() (Camera, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.camera == nil {
		return Camera{}, false
	}
	return *m.camera, true
}

func (m *MemorySurface) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

var _ Surface = (*MemorySurface)(nil)
