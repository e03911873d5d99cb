package main

import (
	"fmt"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (SDP_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// ipaPassOrder reads the ChangeIPA pass order from the flag or the
// text.ipa_pass_order key
func ipaPassOrder(cmd *cobra.Command) ([]symbols.IPAPass, error) {
	names, _ := cmd.Flags().GetStringSlice("ipa-pass-order")
	if len(names) == 0 {
		names = viper.GetStringSlice("text.ipa_pass_order")
	}
	if len(names) == 0 {
		return nil, nil
	}
	return symbols.ParseIPAPassOrder(names)
}

// melHParams merges the mel.hparams config map with --hparam flags; flags win
func melHParams(cmd *cobra.Command) map[string]string {
	result := make(map[string]string)
	for key, value := range viper.GetStringMap("mel.hparams") {
		result[strings.ToLower(key)] = fmt.Sprint(value)
	}
	flags, _ := cmd.Flags().GetStringToString("hparam")
	for key, value := range flags {
		result[key] = value
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
