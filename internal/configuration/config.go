package configuration

import (
	"os"
	"time"

	"github.com/clusterhack/argononed/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath    string `json:"dbPath"`
	StatePath string `json:"statePath"`

	TempRollingWindowSize int `json:"tempRollingWindowSize"`

	Board       BoardConfig       `json:"board"`
	Sensor      SensorConfig      `json:"sensor"`
	FanControl  FanControlConfig  `json:"fanControl"`
	PowerButton PowerButtonConfig `json:"powerButton"`
	Api         ApiConfig         `json:"api"`
	Statistics  StatisticsConfig  `json:"statistics"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("argononed")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/argononed/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbPath", "/var/lib/argononed/argononed.db")
	viper.SetDefault("statePath", "")
	viper.SetDefault("TempRollingWindowSize", 10)

	viper.SetDefault("board.i2cBus", "1")
	viper.SetDefault("board.i2cAddress", 0x1a)
	viper.SetDefault("board.buttonPin", "GPIO4")

	viper.SetDefault("sensor.sysfs.path", "/sys/class/thermal/thermal_zone0/temp")

	viper.SetDefault("fanControl.enabled", true)
	viper.SetDefault("fanControl.pollInterval", 10*time.Second)
	viper.SetDefault("fanControl.hysteresis", 0.0)
	viper.SetDefault("fanControl.speedLut", []map[string]interface{}{
		{"default": 0},
		{"55": 10},
		{"60": 55},
		{"65": 100},
	})

	viper.SetDefault("powerButton.enabled", true)
	viper.SetDefault("powerButton.rebootCmd", "/usr/bin/systemctl reboot")
	viper.SetDefault("powerButton.shutdownCmd", "/usr/bin/systemctl poweroff")

	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.host", "127.0.0.1")
	viper.SetDefault("api.port", 9877)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9878)
}

// DetectAndReadConfigFile detects the path of the first existing config file,
// reads it and returns its path.
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// config file is required, so we fail here
			ui.Fatal("Error reading config file, %s", err)
		}
	}
	return viper.ConfigFileUsed()
}

// LoadConfig decodes the viper state into CurrentConfig.
func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHook()))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		speedLUTHookFunc(),
	)
}
