package sat

// EMA is an exponential moving average. The first observation initializes the
// average so that short sequences are not biased toward zero.
type EMA struct {
	decay float64
	value float64
	init  bool
}

func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

func (ema *EMA) Add(x float64) {
	if !ema.init {
		ema.init = true
		ema.value = x
	} else {
		ema.value = ema.decay*ema.value + x*(1-ema.decay)
	}
}

func (ema *EMA) Val() float64 {
	return ema.value
}

// EMA2 tracks the same signal with a fast and a slow moving average. The
// ratio of the two (Trend) measures whether the signal is currently above or
// below its long-term behavior.
type EMA2 struct {
	fast EMA
	slow EMA
}

func NewEMA2(fastDecay, slowDecay float64) EMA2 {
	return EMA2{
		fast: NewEMA(fastDecay),
		slow: NewEMA(slowDecay),
	}
}

func (e *EMA2) Add(x float64) {
	e.fast.Add(x)
	e.slow.Add(x)
}

func (e *EMA2) Fast() float64 {
	return e.fast.Val()
}

func (e *EMA2) Slow() float64 {
	return e.slow.Val()
}

// Trend returns fast/slow, or 1 if no value has been observed yet.
func (e *EMA2) Trend() float64 {
	if !e.slow.init || e.slow.value == 0 {
		return 1
	}
	return e.fast.value / e.slow.value
}
