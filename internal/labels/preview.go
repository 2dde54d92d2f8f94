package labels

import "sync"

// Preview holds the label currently offered for printing. It is owned by
// the application shell and passed to the components that open or read it.
type Preview struct {
	mu   sync.RWMutex
	open bool
	data *Data
}

// NewPreview returns a closed, empty Preview.
func NewPreview() *Preview {
	return &Preview{}
}

// OpenWith shows data. A nil data leaves the preview closed.
func (p *Preview) OpenWith(data *Data) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if data != nil {
		d := *data
		data = &d
	}
	p.data = data
	p.open = data != nil
}

// Close hides the preview but keeps its data.
func (p *Preview) Close() {
	p.mu.Lock()
	p.open = false
	p.mu.Unlock()
}

// Current returns a copy of the held data and whether the preview is open.
func (p *Preview) Current() (Data, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.data == nil {
		return Data{}, false
	}
	return *p.data, p.open
}
