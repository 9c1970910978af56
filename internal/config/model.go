package config

var defaultConfig = Config{}

type Config struct {
	// Display is the X display to manage, e.g. ":1". Empty means $DISPLAY.
	Display string `yaml:"display"`
	Debug   bool   `yaml:"debug"`
}
