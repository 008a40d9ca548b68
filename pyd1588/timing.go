package pyd1588

// Timing is the per-phase auto-reload period table that paces the Wire
// Engine's timer. Two profiles are named in spec.md §4.1; both produce
// the same protocol, only at different resolutions. Exposing this as a
// data table (rather than inlining periods in the state machine) is the
// Design Notes' explicit instruction: "calibration is a data change,
// not a code change."
type Timing struct {
	// TxNormal is the auto-reload period for a normal TX bit.
	TxNormal uint32
	// TxEndSeq is the auto-reload period for the TX end sequence.
	TxEndSeq uint32
	// RxStartSeq is the auto-reload period for the RX start sequence.
	RxStartSeq uint32
	// RxPerBit is the auto-reload period for each RX bit.
	RxPerBit uint32
	// RxEndSeq is the auto-reload period for the RX end sequence.
	RxEndSeq uint32
}

// ProfileA is the ~10µs-resolution profile, matching
// _examples/original_source/drivers/pyd1588/src/pyd1588.c's TIM6
// configuration at an MSI-derived ~99.857kHz tick rate (prescaler 21).
// Values are periods in timer ticks, as passed to hal.Timer.SetPeriod.
var ProfileA = Timing{
	TxNormal:   9,   // 90us
	TxEndSeq:   67,  // 670us
	RxStartSeq: 121, // ~121-140 tick window per spec.md; conservative low end
	RxPerBit:   1,
	RxEndSeq:   126,
}

// ProfileB is the ~100µs-resolution profile named in spec.md §4.1,
// intended for a slower prescaler where finer-grained profile A periods
// would underflow the auto-reload register.
var ProfileB = Timing{
	TxNormal:   90,
	TxEndSeq:   670,
	RxStartSeq: 121,
	RxPerBit:   1,
	RxEndSeq:   1260,
}
