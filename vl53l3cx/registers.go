package vl53l3cx

// VL53L3CX register addresses (16-bit, big-endian on the wire).
// Addresses and preset values follow the VL53L3CX datasheet and the ST
// bare-driver register map.
const (
	// Boot and system
	SOFT_RESET               = 0x0000
	I2C_SLAVE_DEVICE_ADDRESS = 0x0001
	FIRMWARE_SYSTEM_STATUS   = 0x0010
	PAD_I2C_HV_EXTSUP_CONFIG = 0x002E

	// GPIO and interrupt configuration
	GPIO_HV_MUX_CTRL             = 0x0030
	GPIO_TIO_HV_STATUS           = 0x0031
	SYSTEM_INTERRUPT_CONFIG_GPIO = 0x0046
	SYSTEM_INTERRUPT_CLEAR       = 0x0086
	SYSTEM_MODE_START            = 0x0087
	RESULT_INTERRUPT_STATUS      = 0x0089

	// Static configuration
	ANA_CONFIG_SPAD_SEL_PSWIDTH                  = 0x0033
	ANA_CONFIG_VCSEL_PULSE_WIDTH_OFFSET          = 0x0034
	SIGMA_ESTIMATOR_EFFECTIVE_PULSE_WIDTH_NS     = 0x0036
	SIGMA_ESTIMATOR_EFFECTIVE_AMBIENT_WIDTH_NS   = 0x0037
	SIGMA_ESTIMATOR_SIGMA_REF_MM                 = 0x0038
	ALGO_CROSSTALK_COMPENSATION_VALID_HEIGHT_MM  = 0x0039
	ALGO_RANGE_IGNORE_VALID_HEIGHT_MM            = 0x003E
	ALGO_RANGE_MIN_CLIP                          = 0x003F
	ALGO_CONSISTENCY_CHECK_TOLERANCE             = 0x0040

	// General configuration
	CAL_CONFIG_VCSEL_START         = 0x0047
	CAL_CONFIG_REPEAT_RATE         = 0x0048
	GLOBAL_CONFIG_VCSEL_WIDTH      = 0x004A
	PHASECAL_CONFIG_TIMEOUT_MACROP = 0x004B
	PHASECAL_CONFIG_TARGET         = 0x004C

	// Timing configuration
	MM_CONFIG_TIMEOUT_MACROP_A     = 0x005A
	MM_CONFIG_TIMEOUT_MACROP_B     = 0x005C
	RANGE_CONFIG_TIMEOUT_MACROP_A  = 0x005E
	RANGE_CONFIG_VCSEL_PERIOD_A    = 0x0060
	RANGE_CONFIG_TIMEOUT_MACROP_B  = 0x0061
	RANGE_CONFIG_VCSEL_PERIOD_B    = 0x0063
	SYSTEM_INTERMEASUREMENT_PERIOD = 0x006C

	// Dynamic configuration
	SYSTEM_GROUPED_PARAMETER_HOLD_0              = 0x0071
	SYSTEM_THRESH_HIGH                           = 0x0072
	SYSTEM_THRESH_LOW                            = 0x0074
	SYSTEM_SEED_CONFIG                           = 0x0077
	SD_CONFIG_WOI_SD0                            = 0x0078
	SD_CONFIG_WOI_SD1                            = 0x0079
	SD_CONFIG_INITIAL_PHASE_SD0                  = 0x007A
	SD_CONFIG_INITIAL_PHASE_SD1                  = 0x007B
	SYSTEM_GROUPED_PARAMETER_HOLD_1              = 0x007C
	ROI_CONFIG_USER_ROI_CENTRE_SPAD              = 0x007F
	ROI_CONFIG_USER_ROI_REQUESTED_GLOBAL_XY_SIZE = 0x0080
	SYSTEM_SEQUENCE_CONFIG                       = 0x0081
	SYSTEM_GROUPED_PARAMETER_HOLD                = 0x0082

	// System control
	SYSTEM_STREAM_COUNT_CTRL         = 0x0083
	FIRMWARE_ENABLE                  = 0x0401
	POWER_MANAGEMENT_GO1_POWER_FORCE = 0x0419

	// NVM control
	RANGING_CORE_NVM_CTRL_PDN             = 0x01AC
	RANGING_CORE_NVM_CTRL_MODE            = 0x01AD
	RANGING_CORE_NVM_CTRL_PULSE_WIDTH_MSB = 0x01AE
	RANGING_CORE_NVM_CTRL_ADDR            = 0x01B0
	RANGING_CORE_NVM_CTRL_READN           = 0x01B1
	RANGING_CORE_NVM_CTRL_DATAOUT_MMM     = 0x01B2
	RANGING_CORE_CLK_CTRL1                = 0x01BB
)

// SYSTEM_MODE_START commands.
const (
	modeStartStop       = 0x00
	modeStartBackToBack = 0x42 // continuous ranging
	modeStartSingleShot = 0x12
)

// NVM address of the fast oscillator frequency word.
const nvmAddrFastOscFrequency = 0x1C
