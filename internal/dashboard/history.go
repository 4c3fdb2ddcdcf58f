package dashboard

import "github.com/rileyhilliard/vitals/internal/stats"

// DefaultHistorySize is the default number of data points to retain per metric.
const DefaultHistorySize = 60

// History retains recent metric values in fixed-size ring buffers for
// sparkline rendering. It is only touched from the Bubble Tea update loop,
// so it carries no locking.
type History struct {
	size    int
	cpu     *ringBuffer
	memory  *ringBuffer
	gpu     map[int]*ringBuffer
	network map[string]*netHistory
}

// netHistory holds per-interface throughput history in bytes per second.
type netHistory struct {
	rx *ringBuffer
	tx *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		cpu:     newRingBuffer(size),
		memory:  newRingBuffer(size),
		gpu:     make(map[int]*ringBuffer),
		network: make(map[string]*netHistory),
	}
}

// Push records one snapshot's values.
func (h *History) Push(snap *stats.Snapshot) {
	if snap == nil {
		return
	}

	h.cpu.push(snap.CPU.Usage)
	h.memory.push(snap.Memory.Usage)

	for _, gpu := range snap.GPUs {
		if !gpu.Supported {
			continue
		}
		buf, ok := h.gpu[gpu.Index]
		if !ok {
			buf = newRingBuffer(h.size)
			h.gpu[gpu.Index] = buf
		}
		buf.push(gpu.Utilization)
	}

	for _, iface := range snap.Network {
		net, ok := h.network[iface.Name]
		if !ok {
			net = &netHistory{rx: newRingBuffer(h.size), tx: newRingBuffer(h.size)}
			h.network[iface.Name] = net
		}
		net.rx.push(iface.RxBytesPerSec)
		net.tx.push(iface.TxBytesPerSec)
	}
}

// CPU returns the last count CPU usage values, oldest first.
func (h *History) CPU(count int) []float64 {
	return h.cpu.getLast(count)
}

// Memory returns the last count memory usage values, oldest first.
func (h *History) Memory(count int) []float64 {
	return h.memory.getLast(count)
}

// GPU returns the last count utilization values for one GPU index, or nil
// if that GPU has never reported.
func (h *History) GPU(index, count int) []float64 {
	buf, ok := h.gpu[index]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Network returns the last count rx and tx throughput values for an
// interface, oldest first.
func (h *History) Network(iface string, count int) (rx, tx []float64) {
	net, ok := h.network[iface]
	if !ok {
		return nil, nil
	}
	return net.rx.getLast(count), net.tx.getLast(count)
}

// Count returns the number of data points stored for the CPU metric.
func (h *History) Count() int {
	return h.cpu.count
}

// newRingBuffer creates a ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value is
	// at head-1; take count values ending there.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
