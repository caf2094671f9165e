package heap

// Memory is a Region backed by a Go byte slice.
type Memory struct {
	data  []byte
	limit int64
}

// NewMemory returns an empty in-memory region. limit caps the total size in
// bytes; 0 means only MaxRegionSize applies.
func NewMemory(limit int64) *Memory {
	return &Memory{limit: limit}
}

// Bytes returns the region contents.
func (m *Memory) Bytes() []byte { return m.data }

// Size returns the region length.
func (m *Memory) Size() int64 { return int64(len(m.data)) }

// Limit returns the configured size cap (0 = unlimited).
func (m *Memory) Limit() int64 { return m.limit }

// Grow appends n zeroed bytes.
func (m *Memory) Grow(n int64) (int64, error) {
	base := int64(len(m.data))
	if err := checkGrow(base, n, m.limit); err != nil {
		return 0, err
	}
	m.data = append(m.data, make([]byte, n)...)
	return base, nil
}
