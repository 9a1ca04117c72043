package region

import (
	"image/png"
	"sync"
)

// PNGPool reuses encoder buffers across the many small crops encoded per pass.
type PNGPool struct {
	sync *sync.Pool
}

// encoder is shared by Encode and favours speed over size.
var encoder = &png.Encoder{
	CompressionLevel: png.BestSpeed,
	BufferPool:       NewPNGPool(),
}

func NewPNGPool() *PNGPool {
	return &PNGPool{
		sync: &sync.Pool{
			New: func() any {
				return new(png.EncoderBuffer)
			},
		},
	}
}

func (p *PNGPool) Get() *png.EncoderBuffer {
	return p.sync.Get().(*png.EncoderBuffer)
}

func (p *PNGPool) Put(e *png.EncoderBuffer) {
	p.sync.Put(e)
}
