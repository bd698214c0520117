package configuration

type BoardConfig struct {
	// Name of the I2C bus the fan controller is attached to, e.g. "1".
	I2CBus string `json:"i2cBus"`
	// Device address of the fan controller on the bus.
	I2CAddress uint16 `json:"i2cAddress"`
	// Name of the GPIO pin the power button pulses, e.g. "GPIO4".
	ButtonPin string `json:"buttonPin"`
}

type SensorConfig struct {
	Sysfs *SysfsSensorConfig `json:"sysfs,omitempty"`
	Cmd   *CmdSensorConfig   `json:"cmd,omitempty"`
}

type SysfsSensorConfig struct {
	// Path of a sysfs file containing the chip temperature in milli-degrees.
	Path string `json:"path"`
}

type CmdSensorConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}
