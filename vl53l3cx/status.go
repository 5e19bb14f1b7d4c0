package vl53l3cx

// RangeStatus is the 5-bit measurement quality code reported in the
// histogram header.
type RangeStatus uint8

// Range status codes as reported by the device.
const (
	RangeStatusSigmaFail               RangeStatus = 0x01
	RangeStatusSignalFail              RangeStatus = 0x02
	RangeStatusOutOfBoundsFail         RangeStatus = 0x04
	RangeStatusHardwareFail            RangeStatus = 0x05
	RangeStatusNoWrapCheckFail         RangeStatus = 0x06
	RangeStatusWrapTargetFail          RangeStatus = 0x07
	RangeStatusProcessingFail          RangeStatus = 0x08
	RangeStatusRangeValid              RangeStatus = 0x09
	RangeStatusXtalkSignalFail         RangeStatus = 0x0A
	RangeStatusMinRangeClipped         RangeStatus = 0x0B
	RangeStatusSynchronisationInt      RangeStatus = 0x0C
	RangeStatusMergedPulse             RangeStatus = 0x0D
	RangeStatusLackOfSignal            RangeStatus = 0x0E
	RangeStatusMinRangeFail            RangeStatus = 0x0F
	RangeStatusInvalid                 RangeStatus = 0x11
)

// String returns a short human-readable description of the status code.
func (s RangeStatus) String() string {
	switch s {
	case 0:
		return "valid"
	case RangeStatusSigmaFail:
		return "sigma fail"
	case RangeStatusSignalFail:
		return "signal fail"
	case RangeStatusOutOfBoundsFail:
		return "out of bounds"
	case RangeStatusHardwareFail:
		return "hardware fail"
	case RangeStatusNoWrapCheckFail:
		return "no wrap check"
	case RangeStatusWrapTargetFail:
		return "wrap target fail"
	case RangeStatusProcessingFail:
		return "processing fail"
	case RangeStatusRangeValid:
		return "range valid"
	case RangeStatusXtalkSignalFail:
		return "crosstalk fail"
	case RangeStatusMinRangeClipped:
		return "min range clipped"
	case RangeStatusSynchronisationInt:
		return "sync interrupt"
	case RangeStatusMergedPulse:
		return "merged pulse"
	case RangeStatusLackOfSignal:
		return "lack of signal"
	case RangeStatusMinRangeFail:
		return "min range fail"
	case RangeStatusInvalid:
		return "range invalid"
	default:
		return "unknown status"
	}
}
