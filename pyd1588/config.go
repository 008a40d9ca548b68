package pyd1588

// Word is a packed 25-bit sensor configuration word, little-endian bit
// packing per spec.md §3 (bit 0 = count_mode ... bit 24 = MSB of
// threshold). Only the low 25 bits are meaningful; Pack always clears
// the rest.
type Word uint32

const wordMask Word = 0x01FFFFFF

// Bit offsets and field widths, spec.md §3, "Sensor Configuration Word".
const (
	offCountMode     = 0
	offReservedA     = 1
	offHPFCutoff     = 2
	offReservedB     = 3
	offSignalSource  = 5
	offOperatingMode = 7
	offWindowTime    = 9
	offPulseCounter  = 11
	offBlindTime     = 13
	offThreshold     = 17

	widthCountMode     = 1
	widthReservedA     = 1
	widthHPFCutoff     = 1
	widthReservedB     = 2
	widthSignalSource  = 2
	widthOperatingMode = 2
	widthWindowTime    = 2
	widthPulseCounter  = 2
	widthBlindTime     = 4
	widthThreshold     = 8

	// fixedReservedA and fixedReservedB are the fixed reserved-field
	// values the sensor expects; see _examples/original_source's
	// Pyd1588DefaultConfig, which always sets reserved2 (= reserved_B
	// here) to 2 rather than leaving it zero.
	fixedReservedA = 0
	fixedReservedB = 2
)

// Signal source values.
const (
	SignalSourceBPF = iota
	SignalSourceLPF
	signalSourceReserved
	SignalSourceTemperature
)

// Operating mode values.
const (
	OperatingModeForcedReadout = iota
	OperatingModeInterruptReadout
	OperatingModeWakeup
	operatingModeReserved
)

// HPF cutoff values.
const (
	HPFCutoff0_4Hz = 0
	HPFCutoff0_2Hz = 1
)

// Count mode values.
const (
	CountModeWithBPF = 0
	CountModeWithoutBPF = 1
)

// Config is the structured form of a Sensor Configuration Word. Zero
// value matches the all-zero fields of spec.md's default configuration
// except Threshold, which must be set explicitly (DefaultConfig
// supplies threshold=20).
type Config struct {
	CountMode     uint8 // 1 bit: 0 = BPF-filtered count, 1 = unfiltered
	HPFCutoff     uint8 // 1 bit: 0 = 0.4Hz, 1 = 0.2Hz
	SignalSource  uint8 // 2 bit
	OperatingMode uint8 // 2 bit
	WindowTime    uint8 // 2 bit, window duration code
	PulseCounter  uint8 // 2 bit, pulse-count threshold code
	BlindTime     uint8 // 4 bit, blind-time code
	Threshold     uint8 // 8 bit, detection threshold
}

// DefaultConfig is the configuration spec.md §3 names as default:
// count_mode=0, hpf_cutoff=0, signal_source=BPF, operating_mode=forced,
// window_time=0, pulse_counter=0, blind_time=0, threshold=20.
var DefaultConfig = Config{
	CountMode:     CountModeWithBPF,
	HPFCutoff:     HPFCutoff0_4Hz,
	SignalSource:  SignalSourceBPF,
	OperatingMode: OperatingModeForcedReadout,
	Threshold:     20,
}

// Pack assembles c into its 25-bit wire word, including the fixed
// reserved fields the sensor requires.
func Pack(c Config) Word {
	w := Word(0)
	w |= Word(c.CountMode&0x1) << offCountMode
	w |= Word(fixedReservedA) << offReservedA
	w |= Word(c.HPFCutoff&0x1) << offHPFCutoff
	w |= Word(fixedReservedB) << offReservedB
	w |= Word(c.SignalSource&0x3) << offSignalSource
	w |= Word(c.OperatingMode&0x3) << offOperatingMode
	w |= Word(c.WindowTime&0x3) << offWindowTime
	w |= Word(c.PulseCounter&0x3) << offPulseCounter
	w |= Word(c.BlindTime&0xF) << offBlindTime
	w |= Word(c.Threshold) << offThreshold
	return w & wordMask
}

// Unpack decodes a 25-bit wire word back into its fields. Reserved
// fields are not surfaced: they are fixed by Pack and carry no
// information a caller needs.
func Unpack(w Word) Config {
	w &= wordMask
	return Config{
		CountMode:     uint8(w>>offCountMode) & 0x1,
		HPFCutoff:     uint8(w>>offHPFCutoff) & 0x1,
		SignalSource:  uint8(w>>offSignalSource) & 0x3,
		OperatingMode: uint8(w>>offOperatingMode) & 0x3,
		WindowTime:    uint8(w>>offWindowTime) & 0x3,
		PulseCounter:  uint8(w>>offPulseCounter) & 0x3,
		BlindTime:     uint8(w>>offBlindTime) & 0xF,
		Threshold:     uint8(w >> offThreshold),
	}
}
