package utils

import "github.com/spf13/viper"

// LoadConfig reads an optional .env file from the given path and merges it
// with the process environment. Missing files are not an error; environment
// variables always win.
func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
