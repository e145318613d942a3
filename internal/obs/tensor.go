package obs

// Tensor is a dense float32 array in channel, row, column order.
type Tensor struct {
	C, H, W int
	Data    []float32
}

// NewTensor allocates a zeroed tensor.
func NewTensor(c, h, w int) *Tensor {
	return &Tensor{C: c, H: h, W: w, Data: make([]float32, c*h*w)}
}

// Shape returns (channels, height, width).
func (t *Tensor) Shape() [3]int { return [3]int{t.C, t.H, t.W} }

// At returns the value at channel c, row y, column x.
func (t *Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.H+y)*t.W+x]
}

// Set stores v at channel c, row y, column x.
func (t *Tensor) Set(c, y, x int, v float32) {
	t.Data[(c*t.H+y)*t.W+x] = v
}

// Plane returns channel c as a slice sharing the tensor's memory.
func (t *Tensor) Plane(c int) []float32 {
	n := t.H * t.W
	return t.Data[c*n : (c+1)*n]
}

// Fill sets every cell of channel c to v.
func (t *Tensor) Fill(c int, v float32) {
	p := t.Plane(c)
	for i := range p {
		p[i] = v
	}
}
